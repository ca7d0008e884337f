package birth

import "strings"

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// gazetteer maps normalized place names to city-center coordinates.
// Read-only after package initialization.
var gazetteer = map[string]Coordinates{
	"seoul":     {37.5665, 126.9780},
	"서울":        {37.5665, 126.9780},
	"busan":     {35.1796, 129.0756},
	"부산":        {35.1796, 129.0756},
	"incheon":   {37.4563, 126.7052},
	"인천":        {37.4563, 126.7052},
	"daegu":     {35.8714, 128.6014},
	"대구":        {35.8714, 128.6014},
	"daejeon":   {36.3504, 127.3845},
	"대전":        {36.3504, 127.3845},
	"gwangju":   {35.1595, 126.8526},
	"광주":        {35.1595, 126.8526},
	"ulsan":     {35.5384, 129.3114},
	"울산":        {35.5384, 129.3114},
	"suwon":     {37.2636, 127.0286},
	"수원":        {37.2636, 127.0286},
	"jeju":      {33.4996, 126.5312},
	"제주":        {33.4996, 126.5312},
	"gangneung": {37.7519, 128.8761},
	"강릉":        {37.7519, 128.8761},
	"jeonju":    {35.8242, 127.1480},
	"전주":        {35.8242, 127.1480},
	"cheongju":  {36.6424, 127.4890},
	"청주":        {36.6424, 127.4890},
}

// LookupPlace finds built-in coordinates for a place name. Matching ignores case,
// surrounding spaces and a trailing administrative suffix such as "-si" or "시".
func LookupPlace(name string) (Coordinates, bool) {
	key := normalizePlace(name)
	if key == "" {
		return Coordinates{}, false
	}
	c, ok := gazetteer[key]
	return c, ok
}

func normalizePlace(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexAny(key, ",("); i >= 0 {
		key = strings.TrimSpace(key[:i])
	}
	for _, suffix := range []string{"-si", " city", "특별시", "광역시", "특별자치도", "시"} {
		if strings.HasSuffix(key, suffix) && len(key) > len(suffix) {
			key = strings.TrimSpace(strings.TrimSuffix(key, suffix))
			break
		}
	}
	return key
}
