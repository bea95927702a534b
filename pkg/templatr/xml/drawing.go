package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// InlineImage describes a picture placed inline with text.
type InlineImage struct {
	// RelID is the relationship id of the image part, e.g. "rId7"
	RelID string
	// DocPrID must be unique among the drawings of the document
	DocPrID int
	Name    string
	// CX and CY are the extent in EMU
	CX int64
	CY int64
}

// NewInlineImageRun creates a run holding a w:drawing element for img.
// The drawing declares its own namespaces so it does not depend on the
// declarations of the target document's root element.
func NewInlineImageRun(img InlineImage) *Run {
	var name bytes.Buffer
	_ = xml.EscapeText(&name, []byte(img.Name))

	drawing := fmt.Sprintf(
		`<w:drawing>`+
			`<wp:inline xmlns:wp="%s" distT="0" distB="0" distL="0" distR="0">`+
			`<wp:extent cx="%d" cy="%d"/>`+
			`<wp:effectExtent l="0" t="0" r="0" b="0"/>`+
			`<wp:docPr id="%d" name="%s"/>`+
			`<wp:cNvGraphicFramePr><a:graphicFrameLocks xmlns:a="%s" noChangeAspect="1"/></wp:cNvGraphicFramePr>`+
			`<a:graphic xmlns:a="%s">`+
			`<a:graphicData uri="%s">`+
			`<pic:pic xmlns:pic="%s">`+
			`<pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr>`+
			`<pic:blipFill><a:blip xmlns:r="%s" r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
			`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
			`</pic:pic>`+
			`</a:graphicData>`+
			`</a:graphic>`+
			`</wp:inline>`+
			`</w:drawing>`,
		NamespaceDrawing,
		img.CX, img.CY,
		img.DocPrID, name.String(),
		NamespaceDrawingMain,
		NamespaceDrawingMain,
		NamespacePicture,
		NamespacePicture,
		img.DocPrID, name.String(),
		NamespaceRelationships, img.RelID,
		img.CX, img.CY,
	)

	return &Run{
		Name:    wName("r"),
		Content: []RunContent{NewRawXMLElement("drawing", drawing)},
	}
}
