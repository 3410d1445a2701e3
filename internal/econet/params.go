package econet

import "sort"

// ParamMap maps logical parameter names to the device indexes used by the
// newParam endpoint and the editParams registry.
type ParamMap map[string]string

// DefaultParamMap covers the set-points exposed by ecoMAX boiler controllers.
var DefaultParamMap = ParamMap{
	"tempCOSet":     "1280",
	"tempCWUSet":    "1281",
	"mixerSetTemp1": "1287",
	"mixerSetTemp2": "1288",
	"mixerSetTemp3": "1289",
	"mixerSetTemp4": "1290",
	"mixerSetTemp5": "1291",
	"mixerSetTemp6": "1292",
}

// Index returns the device index for name. A missing mapping is not an error.
func (m ParamMap) Index(name string) (string, bool) {
	idx, ok := m[name]
	return idx, ok
}

// Names returns the mapped parameter names in sorted order
func (m ParamMap) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
