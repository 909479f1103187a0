// Package dag is a small directed graph of string ids.
//
// An edge from A to B means B depends on A. Besides the basic node and edge
// bookkeeping the package answers the questions dependency resolution asks:
// which nodes sit on a cycle, whether one node reaches another, and a
// deterministic topological order.
package dag
