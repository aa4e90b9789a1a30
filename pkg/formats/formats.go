// Package formats provides parsers for the text asset formats the renderer
// loads: Wavefront OBJ meshes, MTL material libraries and scene documents.
package formats
