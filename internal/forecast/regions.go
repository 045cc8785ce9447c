package forecast

// BBox is a geographic bounding box: min lon, min lat, max lon, max lat.
// Longitudes are in [-180, 180); regions crossing the antimeridian have
// MinLon > MaxLon.
type BBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}

// Contains reports whether (lat, lon) falls inside the box, handling
// antimeridian-crossing boxes.
func (b BBox) Contains(lat, lon float64) bool {
	if lat < b.MinLat || lat > b.MaxLat {
		return false
	}
	if b.MinLon <= b.MaxLon {
		return lon >= b.MinLon && lon <= b.MaxLon
	}
	return lon >= b.MinLon || lon <= b.MaxLon
}

// Region is a named ocean basin used to group buoy stations.
type Region struct {
	Key         string `json:"id"`
	Name        string `json:"name"`
	BBox        BBox   `json:"bbox"`
	Description string `json:"description,omitempty"`
}

// regions lists the supported ocean basins with approximate bounding boxes.
var regions = []Region{
	{Key: "north_pacific", Name: "North Pacific", BBox: BBox{-180, 0, -100, 60},
		Description: "North Pacific Ocean including US West Coast"},
	{Key: "south_pacific", Name: "South Pacific", BBox: BBox{140, -60, -70, 0},
		Description: "South Pacific Ocean"},
	{Key: "north_atlantic", Name: "North Atlantic", BBox: BBox{-80, 0, 0, 65},
		Description: "North Atlantic Ocean including US East Coast"},
	{Key: "south_atlantic", Name: "South Atlantic", BBox: BBox{-60, -60, 20, 0},
		Description: "South Atlantic Ocean"},
	{Key: "indian_ocean", Name: "Indian Ocean", BBox: BBox{20, -60, 120, 30},
		Description: "Indian Ocean"},
	{Key: "arctic", Name: "Arctic Ocean", BBox: BBox{-180, 65, 180, 90},
		Description: "Arctic Ocean"},
	{Key: "southern", Name: "Southern Ocean", BBox: BBox{-180, -90, 180, -60},
		Description: "Southern Ocean (Antarctic)"},
	{Key: "caribbean", Name: "Caribbean Sea", BBox: BBox{-90, 8, -60, 28},
		Description: "Caribbean Sea and Gulf of Mexico"},
	{Key: "mediterranean", Name: "Mediterranean Sea", BBox: BBox{-6, 30, 37, 46},
		Description: "Mediterranean Sea"},
}

// Regions returns all supported ocean regions in a stable order.
func Regions() []Region {
	out := make([]Region, len(regions))
	copy(out, regions)
	return out
}

// RegionByKey looks up a region by its key; ok is false for unknown keys.
func RegionByKey(key string) (Region, bool) {
	for _, r := range regions {
		if r.Key == key {
			return r, true
		}
	}
	return Region{}, false
}
