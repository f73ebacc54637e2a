package entity

// Category is the prompt classification outcome. The empty value means the
// classifier produced no recognizable category.
type Category string

const (
	CategoryNone Category = ""
	CategoryA    Category = "A"
	CategoryB    Category = "B"
	CategoryC    Category = "C"
	CategoryD    Category = "D"
	CategoryE    Category = "E"
)

// Categories in scan order. The first letter found in the classifier output
// wins.
var Categories = []Category{CategoryA, CategoryB, CategoryC, CategoryD, CategoryE}

// Valid reports whether the category admits the request into the main
// pipeline. Currently every parsed category does; only a classification
// failure blocks.
func (c Category) Valid() bool {
	return c != CategoryNone
}

// ClassificationResult is produced once per user turn by the prompt gate.
type ClassificationResult struct {
	Category Category
	Raw      string
}
