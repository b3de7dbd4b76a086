// Package visitor implements the pre/post-order traversal over a decoded
// type graph (lf/types). Visitor mirrors the original Rust implementation's
// accept/pre_visit_*/post_visit_* pattern: each element type dispatches a
// pre-visit hook, recurses into its children, then dispatches a post-visit
// hook, allowing a Visitor implementation to react to entry and exit of any
// node in the graph.
package visitor

import "github.com/daml-lf/bridge/lf/types"

// Visitor receives pre/post hooks for every element kind in the type graph.
// Embed BaseVisitor to implement only the hooks a particular walk cares
// about; all others become no-ops.
type Visitor interface {
	PreVisitArchive(*types.Archive)
	PostVisitArchive(*types.Archive)
	PreVisitPackage(*types.Package)
	PostVisitPackage(*types.Package)
	PreVisitModule(*types.Module)
	PostVisitModule(*types.Module)
	PreVisitData(*types.Data)
	PostVisitData(*types.Data)
	PreVisitRecord(*types.Record)
	PostVisitRecord(*types.Record)
	PreVisitVariant(*types.Variant)
	PostVisitVariant(*types.Variant)
	PreVisitEnum(*types.Enum)
	PostVisitEnum(*types.Enum)
	PreVisitTemplate(*types.Template)
	PostVisitTemplate(*types.Template)
	PreVisitChoice(*types.Choice)
	PostVisitChoice(*types.Choice)
	PreVisitField(*types.Field)
	PostVisitField(*types.Field)
	PreVisitType(*types.Type)
	PostVisitType(*types.Type)
}

// BaseVisitor provides no-op implementations of every Visitor hook. Embed it
// anonymously and override only the methods a given walk needs.
type BaseVisitor struct{}

func (BaseVisitor) PreVisitArchive(*types.Archive)   {}
func (BaseVisitor) PostVisitArchive(*types.Archive)  {}
func (BaseVisitor) PreVisitPackage(*types.Package)   {}
func (BaseVisitor) PostVisitPackage(*types.Package)  {}
func (BaseVisitor) PreVisitModule(*types.Module)     {}
func (BaseVisitor) PostVisitModule(*types.Module)    {}
func (BaseVisitor) PreVisitData(*types.Data)         {}
func (BaseVisitor) PostVisitData(*types.Data)        {}
func (BaseVisitor) PreVisitRecord(*types.Record)     {}
func (BaseVisitor) PostVisitRecord(*types.Record)    {}
func (BaseVisitor) PreVisitVariant(*types.Variant)   {}
func (BaseVisitor) PostVisitVariant(*types.Variant)  {}
func (BaseVisitor) PreVisitEnum(*types.Enum)         {}
func (BaseVisitor) PostVisitEnum(*types.Enum)        {}
func (BaseVisitor) PreVisitTemplate(*types.Template) {}
func (BaseVisitor) PostVisitTemplate(*types.Template) {}
func (BaseVisitor) PreVisitChoice(*types.Choice)     {}
func (BaseVisitor) PostVisitChoice(*types.Choice)    {}
func (BaseVisitor) PreVisitField(*types.Field)       {}
func (BaseVisitor) PostVisitField(*types.Field)      {}
func (BaseVisitor) PreVisitType(*types.Type)         {}
func (BaseVisitor) PostVisitType(*types.Type)        {}

var _ Visitor = BaseVisitor{}
