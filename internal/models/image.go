package models

type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type ResizedImage struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
}

type DerivedImage struct {
	Original string         `json:"original"`
	Resized  []ResizedImage `json:"resized"`
}
