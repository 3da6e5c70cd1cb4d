package model

// CancerType is one roster filter option
type CancerType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultCancerTypes are the filter options when none are configured
func DefaultCancerTypes() []CancerType {
	return []CancerType{
		{ID: "breast", Name: "Breast"},
		{ID: "colorectal", Name: "Colorectal"},
		{ID: "ovarian", Name: "Ovarian"},
		{ID: "lung", Name: "Lung"},
		{ID: "melanoma", Name: "Melanoma"},
		{ID: "renal cell carcinoma", Name: "Renal Cell Carcinoma"},
		{ID: "urothelial cancer", Name: "Urothelial Cancer"},
		{ID: "endometrial", Name: "Endometrial"},
		{ID: "other", Name: "Other"},
	}
}
