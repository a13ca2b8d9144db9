package schema

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// ObjectTag is a data-bearing tag of the labeling configuration (Image,
// Text, HyperText, ...). ValueKey is the task data key the tag binds to,
// without the leading "$".
type ObjectTag struct {
	Type     string
	Name     string
	ValueKey string
}

// ControlTag is an annotation control of the labeling configuration
// (Labels, Rectangle, TextArea, ...) pointing at an object tag via ToName.
type ControlTag struct {
	Type   string
	Name   string
	ToName string
	// Labels holds the declared label values for Labels-like controls.
	Labels []string
}

// LabelInterface is the parsed labeling configuration of a project. It is the
// backend-side view of the XML config Label Studio sends on /setup.
type LabelInterface struct {
	objects  []ObjectTag
	controls []ControlTag
}

type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []xmlNode  `xml:",any"`
}

func (n *xmlNode) attr(name string) string {
	for _, a := range n.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value
		}
	}
	return ""
}

// ParseLabelConfig parses a labeling configuration XML document.
func ParseLabelConfig(config string) (*LabelInterface, error) {
	if strings.TrimSpace(config) == "" {
		return nil, fmt.Errorf("labeling config is empty")
	}
	var root xmlNode
	if err := xml.Unmarshal([]byte(config), &root); err != nil {
		return nil, fmt.Errorf("parse labeling config: %w", err)
	}
	li := &LabelInterface{}
	li.walk(&root)
	return li, nil
}

// walk collects object and control tags in document order. Tags with a
// toName attribute are controls, tags with a value binding are objects.
func (li *LabelInterface) walk(n *xmlNode) {
	name := n.attr("name")
	toName := n.attr("toName")
	value := n.attr("value")
	switch {
	case name != "" && toName != "":
		ctrl := ControlTag{Type: n.XMLName.Local, Name: name, ToName: toName}
		for _, child := range n.Nodes {
			if strings.EqualFold(child.XMLName.Local, "Label") {
				if v := child.attr("value"); v != "" {
					ctrl.Labels = append(ctrl.Labels, v)
				}
			}
		}
		li.controls = append(li.controls, ctrl)
	case name != "" && strings.HasPrefix(value, "$"):
		li.objects = append(li.objects, ObjectTag{
			Type:     n.XMLName.Local,
			Name:     name,
			ValueKey: strings.TrimPrefix(value, "$"),
		})
	}
	for i := range n.Nodes {
		li.walk(&n.Nodes[i])
	}
}

// Object returns the object tag with the given name.
func (li *LabelInterface) Object(name string) (ObjectTag, bool) {
	for _, o := range li.objects {
		if o.Name == name {
			return o, true
		}
	}
	return ObjectTag{}, false
}

// Control returns the control tag with the given name.
func (li *LabelInterface) Control(name string) (ControlTag, bool) {
	for _, c := range li.controls {
		if c.Name == name {
			return c, true
		}
	}
	return ControlTag{}, false
}

// FirstTagOccurrence returns the first control of controlType bound to an
// object of objectType, in document order: the control name (from_name), the
// object name (to_name) and the task data key the object binds to.
func (li *LabelInterface) FirstTagOccurrence(controlType, objectType string) (fromName, toName, dataKey string, err error) {
	for _, c := range li.controls {
		if !strings.EqualFold(c.Type, controlType) {
			continue
		}
		for _, o := range li.objects {
			if o.Name == c.ToName && strings.EqualFold(o.Type, objectType) {
				return c.Name, o.Name, o.ValueKey, nil
			}
		}
	}
	return "", "", "", fmt.Errorf("no %s control bound to a %s object in labeling config", controlType, objectType)
}
