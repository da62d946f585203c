package catalog

// Feature describes a known performance or fabric tag for display.
type Feature struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	IconType    string `json:"icon_type"`
	Description string `json:"description"`
}

var seedFeatures = []Feature{
	{ID: "biowash", Name: "Special BioWash", IconType: "drop", Description: "Enzyme treated for extra softness and longevity."},
	{ID: "dryfit", Name: "Dry Fit", IconType: "wind", Description: "Keeps you dry and comfortable."},
	{ID: "supershield", Name: "Super Shield", IconType: "shield", Description: "Anti-Microbial protection."},
	{ID: "superwick", Name: "Super Wick", IconType: "drop", Description: "Superior moisture management."},
	{ID: "coolrush", Name: "Cool Rush", IconType: "wind", Description: "Breathable fabric technology."},
	{ID: "stretch", Name: "Stretch Fabric", IconType: "stretch", Description: "Freedom of movement."},
	{ID: "softfeel", Name: "Soft Feel", IconType: "feather", Description: "Extra soft fabric for enhanced touch."},
	{ID: "uv", Name: "UV Protection", IconType: "sun", Description: "Protects skin from harmful rays."},
	{ID: "antistatic", Name: "Anti Static", IconType: "spark", Description: "Reduces static cling."},
	{ID: "antiodour", Name: "Anti Odour", IconType: "smell", Description: "Prevents odour build up."},
	{ID: "waterrepellant", Name: "Water Repellant", IconType: "water", Description: "Resists water penetration."},
	{ID: "graphene", Name: "Graphene Finish", IconType: "atom", Description: "Advanced material finish."},
	{ID: "wrinklefree", Name: "Wrinkle Free", IconType: "iron", Description: "Resists creasing."},
	{ID: "staydry", Name: "Stay Dry", IconType: "drop", Description: "Remains dry during activity."},
	{ID: "stayfresh", Name: "Stay Fresh", IconType: "diamond", Description: "Long lasting freshness."},
	{ID: "denimfabric", Name: "Denim Fabric", IconType: "fabric", Description: "Durable denim construction."},
	{ID: "frenchterry", Name: "French Terry", IconType: "fabric", Description: "Soft french terry fabric."},
	{ID: "nspoly", Name: "NS Poly Fabric", IconType: "layers", Description: "Durable non-stretch polyester."},
	{ID: "micropoly", Name: "Micro Poly", IconType: "fabric", Description: "Fine textured polyester for comfort."},
	{ID: "lycra", Name: "4-Way Lycra", IconType: "stretch", Description: "Premium stretch for maximum flexibility."},
}

// Features returns the seed feature catalog in its declared order.
func Features() []Feature {
	out := make([]Feature, len(seedFeatures))
	copy(out, seedFeatures)
	return out
}

func LookupFeature(id string) (Feature, bool) {
	for _, f := range seedFeatures {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// Label is the display name for a tag; unknown tags are shown verbatim.
func Label(tag string) string {
	if f, ok := LookupFeature(tag); ok {
		return f.Name
	}
	return tag
}
