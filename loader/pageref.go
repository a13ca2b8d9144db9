package loader

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// PageRef identifies a rendered PDF page behind a task image reference. The
// deployed projects name page images "<document>_<page>.png" with a 0-based
// page number; the source document is "<document>.pdf".
type PageRef struct {
	// ImageName is the base file name of the referenced page image.
	ImageName string
	// PDFName is the base file name of the source document.
	PDFName string
	// Project is the path segment preceding the image name, when present.
	Project string
	// Page is the 0-based page index.
	Page int
}

// ParsePageRef resolves a task image reference back to its source document
// and page. Query-style prefixes ("...?d=<path>") are stripped first.
func ParsePageRef(ref string) (PageRef, error) {
	p := refPath(unwrapRef(ref))
	imageName := path.Base(p)
	project := path.Base(path.Dir(p))
	if project == "." || project == "/" {
		project = ""
	}

	stem := strings.TrimSuffix(imageName, path.Ext(imageName))
	idx := strings.LastIndex(stem, "_")
	if idx <= 0 {
		return PageRef{}, fmt.Errorf("image reference %q has no page suffix", ref)
	}
	page, err := strconv.Atoi(stem[idx+1:])
	if err != nil || page < 0 {
		return PageRef{}, fmt.Errorf("image reference %q has no numeric page suffix", ref)
	}

	return PageRef{
		ImageName: imageName,
		PDFName:   stem[:idx] + ".pdf",
		Project:   project,
		Page:      page,
	}, nil
}
