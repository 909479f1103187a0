// Package hcl loads declarative bud content from HCL (or HCL-flavoured JSON)
// files and turns it into an extension that applies the content through the
// public API.
//
// A bud directory may hold a content.hcl, a content.json, and any number of
// files under content/. Files are applied in path order, blocks in file
// order:
//
//	content "Item" "GoldenLeaf" {
//	  table "ItemData" {
//	    fields = {
//	      buying_price = 120
//	      effects      = [{ use_type = "HPRecover", value = 4 }]
//	    }
//	  }
//	  text "Items" {
//	    language = lang.en
//	    fields   = { name = "Golden Leaf", description = "Shiny." }
//	  }
//	}
//
//	content "Medal" "HPPlus" {
//	  existing = true
//	  table "BadgeData" {
//	    fields = { mp_cost = 1 }
//	  }
//	}
//
// Existing content may also be referenced by game id: content "Item" "3".
package hcl
