// Package alloy holds the form state behind the extension's schema-driven
// object editor:
//
// - A Tree of Nodes built from a JSON Schema fragment and a persisted value
// - Type helpers per schema kind (population, validation, serialization)
// - Validate, returning an error tree with the same shape as the form state
// - Extract, returning the plain value plus per-path clear instructions
//
// Design policy:
// - Keep the form-state API in the root package; schemas live in jsonschema/,
// HTTP access in registry/, views in view/ and the dev server under internal/.
// - Trees are immutable. Every edit returns a new Tree sharing unchanged nodes.
// - Node ids come from a generator owned by the Builder, never from paths.
//
// Typical usage:
//
//	b := alloy.NewBuilder()
//	tree := b.Build(schema, alloy.BuildOptions{Value: settings["data"]})
//	tree, err := tree.SetValue(id, "%page name%")
//	if errs := alloy.Validate(tree.Root); !errs.Empty() { ... }
//	out := alloy.Extract(tree.Root)
//	settings["data"], settings["transforms"] = out.Value, out.Transforms()
package alloy
