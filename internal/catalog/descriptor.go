package catalog

import "regexp"

// FieldType is the semantic type of a record field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldLongText
	FieldNumber
	FieldBool
	FieldSelect
	FieldURL
)

// SelectOption is one allowed value of a single-select field.
// The integer code is what travels on the wire; the label is shown
// while editing.
type SelectOption struct {
	Code  int
	Label string
}

// FieldDescriptor defines the static schema for a single record field:
// its semantic type, whether it is mandatory, and its validation rules.
// The descriptor list is ordered and read-only to the rest of the
// package.
type FieldDescriptor struct {
	Name      string         // Field name as sent to the remote store
	Label     string         // Display name
	Type      FieldType      // Semantic type
	Mandatory bool           // Value must be present on commit
	Monetary  bool           // Numbers only: rounded to 2 decimal places on the wire
	Options   []SelectOption // Allowed values for FieldSelect
	Pattern   *regexp.Regexp // Optional pattern for text-like fields
	Min       *float64       // Optional lower bound for FieldNumber
	Max       *float64       // Optional upper bound for FieldNumber
	Default   any            // Wire-side default for new records (nil if none)
}

// DefaultValue returns the wire-side default for a freshly created
// record: the descriptor's declared default if any, an empty string
// for mandatory non-select fields (so required-field validation can
// fire on an untouched record), and nil otherwise.
func (d FieldDescriptor) DefaultValue() any {
	if d.Default != nil {
		return d.Default
	}
	if d.Mandatory && d.Type != FieldSelect {
		return ""
	}
	return nil
}

// fieldTypeName returns a human-readable name for a field type.
func fieldTypeName(ft FieldType) string {
	switch ft {
	case FieldText:
		return "text"
	case FieldLongText:
		return "long text"
	case FieldNumber:
		return "number"
	case FieldBool:
		return "boolean"
	case FieldSelect:
		return "select"
	case FieldURL:
		return "URL"
	default:
		return "value"
	}
}

var (
	skuPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)
	zero       = 0.0
)

// DefaultDescriptors returns the built-in field schema for product
// records. Order matters: it defines column order in listings and
// exports.
func DefaultDescriptors() []FieldDescriptor {
	return []FieldDescriptor{
		{Name: "sku", Label: "SKU", Type: FieldText, Mandatory: true, Pattern: skuPattern},
		{Name: "name", Label: "Name", Type: FieldText, Mandatory: true},
		{Name: "description", Label: "Description", Type: FieldLongText},
		{Name: "price", Label: "Price", Type: FieldNumber, Mandatory: true, Monetary: true, Min: &zero},
		{Name: "stock", Label: "Stock", Type: FieldNumber, Min: &zero},
		{Name: "active", Label: "Active", Type: FieldBool, Default: true},
		{Name: "category", Label: "Category", Type: FieldSelect, Options: []SelectOption{
			{Code: 1, Label: "General"},
			{Code: 2, Label: "Hardware"},
			{Code: 3, Label: "Apparel"},
			{Code: 4, Label: "Consumables"},
		}},
		{Name: "image_url", Label: "Image URL", Type: FieldURL},
		{Name: "product_page", Label: "Product Page", Type: FieldURL},
	}
}
