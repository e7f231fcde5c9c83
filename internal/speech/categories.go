package speech

// Canonical category names, in ceremony running order.
const (
	CategoryBestPicture       = "Best Picture"
	CategoryDirecting         = "Directing"
	CategoryLeadActor         = "Actor in a Leading Role"
	CategoryLeadActress       = "Actress in a Leading Role"
	CategorySupportingActor   = "Actor in a Supporting Role"
	CategorySupportingActress = "Actress in a Supporting Role"
	CategoryOriginalWriting   = "Writing (Original Screenplay)"
	CategoryAdaptedWriting    = "Writing (Adapted Screenplay)"
)

var canonicalCategories = []string{
	CategoryBestPicture,
	CategoryDirecting,
	CategoryLeadActor,
	CategoryLeadActress,
	CategorySupportingActor,
	CategorySupportingActress,
	CategoryOriginalWriting,
	CategoryAdaptedWriting,
}

// categoryAliases maps raw category strings from either source to canonical
// names. Categories absent from this table are dropped during ingest. The
// award names have shifted over the decades; the aliases cover every form
// seen in the 1993+ data.
var categoryAliases = map[string]string{
	"Best Picture":               CategoryBestPicture,
	"Best Motion Picture":        CategoryBestPicture,
	"Outstanding Motion Picture": CategoryBestPicture,

	"Directing": CategoryDirecting,

	"Actor in a Leading Role":   CategoryLeadActor,
	"Actor":                     CategoryLeadActor,
	"Actress in a Leading Role": CategoryLeadActress,
	"Actress":                   CategoryLeadActress,

	"Actor in a Supporting Role":   CategorySupportingActor,
	"Actress in a Supporting Role": CategorySupportingActress,

	"Writing (Original Screenplay)":                                 CategoryOriginalWriting,
	"Writing (Screenplay Written Directly for the Screen)":          CategoryOriginalWriting,
	"Writing (Story and Screenplay--written directly for the screen)": CategoryOriginalWriting,
	"Writing (Story and Screenplay)":                                CategoryOriginalWriting,

	"Writing (Adapted Screenplay)":                                       CategoryAdaptedWriting,
	"Writing (Screenplay Based on Material Previously Produced or Published)": CategoryAdaptedWriting,
	"Writing (Screenplay--based on material from another medium)":       CategoryAdaptedWriting,
	"Writing (Screenplay Based on Material from Another Medium)":        CategoryAdaptedWriting,
	"Writing (Screenplay Adapted from Other Material)":                  CategoryAdaptedWriting,
}

// Categories returns the canonical category names in stable order.
func Categories() []string {
	out := make([]string, len(canonicalCategories))
	copy(out, canonicalCategories)
	return out
}

// IsCanonicalCategory reports whether name is one of the canonical categories.
func IsCanonicalCategory(name string) bool {
	for _, c := range canonicalCategories {
		if c == name {
			return true
		}
	}
	return false
}

// CanonicalCategory maps a raw source category to its canonical name.
// The second return is false for categories outside the game's scope.
func CanonicalCategory(raw string) (string, bool) {
	canonical, ok := categoryAliases[raw]
	return canonical, ok
}
