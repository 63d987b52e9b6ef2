package checker

// PageContent is the page descriptor supplied by the DOM-observing host.
// Every field is optional; missing data simply yields no findings.
type PageContent struct {
	URL      string     `json:"url,omitempty"`
	Text     string     `json:"text,omitempty"`   // visible page text
	Markup   string     `json:"markup,omitempty"` // raw HTML, scanned for miner identifiers
	Forms    []Form     `json:"forms,omitempty"`
	Scripts  []Script   `json:"scripts,omitempty"`
	Images   []Image    `json:"images,omitempty"`
	Elements []Element  `json:"elements,omitempty"` // candidates for hidden-element checks
	Frame    *FrameInfo `json:"frame,omitempty"`
}

// Form describes one <form>
type Form struct {
	Action       string        `json:"action,omitempty"`
	Method       string        `json:"method,omitempty"`
	HasPassword  bool          `json:"has_password"`
	InputNames   []string      `json:"input_names,omitempty"`
	HiddenInputs []HiddenInput `json:"hidden_inputs,omitempty"`
}

// HiddenInput is an <input type="hidden">
type HiddenInput struct {
	Name  string `json:"name,omitempty"`
	Value string `json:"value"`
}

// Script is a <script> element, either external (Src) or inline (Inline)
type Script struct {
	Src    string `json:"src,omitempty"`
	Inline string `json:"inline,omitempty"`
}

// Image is an <img> element
type Image struct {
	Src string `json:"src,omitempty"`
	Alt string `json:"alt,omitempty"`
}

// Element is an iframe/div/embed/object with its computed visibility.
// Width and Height are nil when the bounding box is unknown.
type Element struct {
	Tag        string   `json:"tag"`
	Display    string   `json:"display,omitempty"`
	Visibility string   `json:"visibility,omitempty"`
	Opacity    string   `json:"opacity,omitempty"`
	Width      *float64 `json:"width,omitempty"`
	Height     *float64 `json:"height,omitempty"`
	InnerHTML  string   `json:"inner_html,omitempty"`
}

// FrameInfo tells whether the page runs inside a parent frame.
// An empty ParentOrigin means the parent could not be determined.
type FrameInfo struct {
	Framed       bool   `json:"framed"`
	ParentOrigin string `json:"parent_origin,omitempty"`
}

// ContentFindings is the output of one content scan
type ContentFindings struct {
	Threats  []Threat  `json:"threats"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// IsEmpty reports whether the descriptor carries nothing to scan
func (p PageContent) IsEmpty() bool {
	return p.Text == "" && p.Markup == "" && len(p.Forms) == 0 && len(p.Scripts) == 0 &&
		len(p.Images) == 0 && len(p.Elements) == 0 && p.Frame == nil
}
