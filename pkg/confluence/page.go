package confluence

// Page is a single content record returned by the Confluence content API.
type Page struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Body  PageBody `json:"body"`
}

// PageBody holds the expanded body representations of a page.
type PageBody struct {
	View PageBodyView `json:"view"`
}

// PageBodyView is the rendered (HTML) representation of a page body.
type PageBodyView struct {
	Value string `json:"value"`
}
