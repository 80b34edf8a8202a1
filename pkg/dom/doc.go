// Package dom is an in-memory live node tree.
//
// A Document creates Nodes and implements reconcile.Tree[*Node], so a
// reconcile.Reconciler can patch it the way a browser host would patch its
// DOM. Every mutation is appended to the document's op log as a
// vdom.Patch:
//
//	doc := dom.NewDocument()
//	root := doc.MustBuild(vdom.Ul(vdom.Li(vdom.Key("a"), "first")))
//	doc.ResetOps()
//
//	r := reconcile.New[*dom.Node](doc, reconcile.Hooks[*dom.Node]{})
//	err := r.Reconcile(root, next)
//	for _, p := range doc.Ops() {
//	    fmt.Println(p.Op, p.Target)
//	}
//
// Render prints a node as HTML with attributes in sorted order.
package dom
