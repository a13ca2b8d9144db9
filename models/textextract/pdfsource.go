package textextract

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Clip is a rectangle in PDF points with the origin in the upper-left corner
// of the page, matching the orientation of image coordinates.
type Clip struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// TextSource extracts embedded text from PDF documents.
type TextSource interface {
	// PageSize returns the page dimensions in PDF points. Page is 0-based.
	PageSize(path string, page int) (width, height float64, err error)
	// ClipText returns the text inside the clip rectangle of a page, lines
	// top to bottom. Page is 0-based.
	ClipText(path string, page int, clip Clip) (string, error)
}

var _ TextSource = (*PDFSource)(nil)

// PDFSource reads embedded text with positions from PDF files on disk.
type PDFSource struct{}

func (PDFSource) openPage(path string, page int) (*pdf.Reader, pdf.Page, func(), error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, pdf.Page{}, nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	closer := func() { f.Close() }
	if page < 0 || page >= r.NumPage() {
		closer()
		return nil, pdf.Page{}, nil, fmt.Errorf("pdf %s has no page %d (%d pages)", path, page, r.NumPage())
	}
	return r, r.Page(page + 1), closer, nil
}

func (s PDFSource) PageSize(path string, page int) (float64, float64, error) {
	_, p, closer, err := s.openPage(path, page)
	if err != nil {
		return 0, 0, err
	}
	defer closer()
	return mediaBoxSize(p)
}

func mediaBoxSize(p pdf.Page) (float64, float64, error) {
	v := p.V
	for !v.IsNull() {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			w := box.Index(2).Float64() - box.Index(0).Float64()
			h := box.Index(3).Float64() - box.Index(1).Float64()
			return w, h, nil
		}
		v = v.Key("Parent")
	}
	return 0, 0, fmt.Errorf("page has no MediaBox")
}

func (s PDFSource) ClipText(path string, page int, clip Clip) (string, error) {
	_, p, closer, err := s.openPage(path, page)
	if err != nil {
		return "", err
	}
	defer closer()

	_, pageHeight, err := mediaBoxSize(p)
	if err != nil {
		return "", err
	}

	// PDF text positions have a bottom-left origin: flip the clip.
	yMin := pageHeight - (clip.Y + clip.Height)
	yMax := pageHeight - clip.Y

	var chars []pdf.Text
	for _, t := range p.Content().Text {
		if t.X < clip.X || t.X > clip.X+clip.Width {
			continue
		}
		if t.Y < yMin || t.Y > yMax {
			continue
		}
		chars = append(chars, t)
	}
	return assemble(chars), nil
}

// assemble orders positioned characters into lines (top to bottom, left to
// right) and joins them, inserting spaces on horizontal gaps.
func assemble(chars []pdf.Text) string {
	if len(chars) == 0 {
		return ""
	}
	sort.SliceStable(chars, func(i, j int) bool {
		if !sameLine(chars[i], chars[j]) {
			return chars[i].Y > chars[j].Y
		}
		return chars[i].X < chars[j].X
	})

	var b strings.Builder
	prev := chars[0]
	b.WriteString(chars[0].S)
	for _, c := range chars[1:] {
		switch {
		case !sameLine(prev, c):
			b.WriteString("\n")
		case c.X-(prev.X+prev.W) > gapThreshold(prev):
			b.WriteString(" ")
		}
		b.WriteString(c.S)
		prev = c
	}
	return b.String()
}

func sameLine(a, b pdf.Text) bool {
	tolerance := a.FontSize / 2
	if tolerance <= 0 {
		tolerance = 2
	}
	diff := a.Y - b.Y
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

func gapThreshold(t pdf.Text) float64 {
	if t.FontSize > 0 {
		return t.FontSize / 4
	}
	return 1
}
