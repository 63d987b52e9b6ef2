package checker

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// maxExtractedTextBytes caps the visible text kept from one document
const maxExtractedTextBytes = 1 << 20

// HTMLParser turns raw markup into a PageContent descriptor
type HTMLParser struct {
	pageURL string
	maxText int
}

// NewHTMLParser creates a parser for markup served at pageURL
func NewHTMLParser(pageURL string) *HTMLParser {
	return &HTMLParser{
		pageURL: pageURL,
		maxText: maxExtractedTextBytes,
	}
}

// ExtractPageContent is a convenience wrapper around HTMLParser.Parse
func ExtractPageContent(pageURL, markup string) (PageContent, error) {
	return NewHTMLParser(pageURL).Parse(markup)
}

// Parse extracts forms, scripts, images, candidate hidden elements and
// visible text. The frame context cannot be known from markup and is left nil.
func (p *HTMLParser) Parse(markup string) (PageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return PageContent{}, fmt.Errorf("parse markup: %w", err)
	}

	content := PageContent{
		URL:    p.pageURL,
		Markup: markup,
	}

	content.Forms = p.extractForms(doc)
	content.Scripts = p.extractScripts(doc)
	content.Images = p.extractImages(doc)
	content.Elements = p.extractElements(doc)

	var text strings.Builder
	for _, n := range doc.Nodes {
		p.collectText(n, &text)
	}
	content.Text = strings.Join(strings.Fields(text.String()), " ")

	return content, nil
}

// extractForms collects every <form> with its inputs
func (p *HTMLParser) extractForms(doc *goquery.Document) []Form {
	var forms []Form

	doc.Find("form").Each(func(i int, sel *goquery.Selection) {
		form := Form{
			Action: strings.TrimSpace(sel.AttrOr("action", "")),
			Method: strings.ToUpper(strings.TrimSpace(sel.AttrOr("method", "GET"))),
		}

		sel.Find("input").Each(func(j int, input *goquery.Selection) {
			inputType := strings.ToLower(input.AttrOr("type", "text"))
			name := input.AttrOr("name", input.AttrOr("id", ""))

			switch inputType {
			case "password":
				form.HasPassword = true
			case "hidden":
				value, _ := input.Attr("value")
				form.HiddenInputs = append(form.HiddenInputs, HiddenInput{Name: name, Value: value})
			}
			if name != "" {
				form.InputNames = append(form.InputNames, name)
			}
		})

		forms = append(forms, form)
	})

	return forms
}

// extractScripts collects external and inline scripts in document order
func (p *HTMLParser) extractScripts(doc *goquery.Document) []Script {
	var scripts []Script

	doc.Find("script").Each(func(i int, sel *goquery.Selection) {
		if src, ok := sel.Attr("src"); ok && strings.TrimSpace(src) != "" {
			scripts = append(scripts, Script{Src: strings.TrimSpace(src)})
			return
		}
		if body := strings.TrimSpace(sel.Text()); body != "" {
			scripts = append(scripts, Script{Inline: body})
		}
	})

	return scripts
}

func (p *HTMLParser) extractImages(doc *goquery.Document) []Image {
	var images []Image

	doc.Find("img").Each(func(i int, sel *goquery.Selection) {
		images = append(images, Image{
			Src: strings.TrimSpace(sel.AttrOr("src", "")),
			Alt: strings.TrimSpace(sel.AttrOr("alt", "")),
		})
	})

	return images
}

// extractElements collects iframes, embeds and objects, plus divs that carry
// an inline style. Visibility comes from the inline style and size attributes
// only, so elements hidden by stylesheets are missed.
func (p *HTMLParser) extractElements(doc *goquery.Document) []Element {
	var elements []Element

	doc.Find("iframe, embed, object, div[style]").Each(func(i int, sel *goquery.Selection) {
		tag := goquery.NodeName(sel)
		style := parseInlineStyle(sel.AttrOr("style", ""))

		el := Element{
			Tag:        tag,
			Display:    style["display"],
			Visibility: style["visibility"],
			Opacity:    style["opacity"],
			Width:      pixelValue(style["width"], sel.AttrOr("width", "")),
			Height:     pixelValue(style["height"], sel.AttrOr("height", "")),
		}
		if inner, err := sel.Html(); err == nil {
			el.InnerHTML = inner
		}

		elements = append(elements, el)
	})

	return elements
}

// collectText walks the tree appending text nodes outside script, style and noscript
func (p *HTMLParser) collectText(n *html.Node, b *strings.Builder) {
	if b.Len() >= p.maxText {
		return
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript", "template":
			return
		}
	}

	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.collectText(c, b)
	}
}

// parseInlineStyle splits a style attribute into lower-cased property/value pairs
func parseInlineStyle(style string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), "!important")))
		if name != "" {
			props[name] = strings.TrimSpace(value)
		}
	}
	return props
}

// pixelValue reads a pixel size from a style value, falling back to an HTML
// size attribute. Percentages and other units are treated as unknown.
func pixelValue(styleValue, attrValue string) *float64 {
	for _, v := range []string{styleValue, attrValue} {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		v = strings.TrimSuffix(v, "px")
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
		return nil
	}
	return nil
}
