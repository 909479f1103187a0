// Package api is what buds compile against.
//
// A bud receives a *Venus scoped to its own id when it activates. Through it
// the bud registers new content, which mints a game id and a default line in
// every table of the kind, or requests existing content to override. Typed
// handles such as ItemHandle expose the fields of each kind; Content is the
// untyped form every handle embeds.
//
//	func (b *myBud) Activate(ctx context.Context, v *api.Venus) error {
//		sword, err := v.RegisterItem("Sword")
//		if err != nil {
//			return err
//		}
//		return sword.SetName(0, "Sword")
//	}
package api
