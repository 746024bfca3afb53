package outcome

import (
	"github.com/spf13/cast"
)

// Detail is the structured diagnostic payload of a node. Layers extend it
// additively: a parent merges its own fields on top of a child's detail,
// it never replaces the child's record wholesale.
type Detail map[string]interface{}

// Merge copies every key of other into d, overriding keys d already has.
// Existing keys not present in other are left untouched.
func (d Detail) Merge(other Detail) Detail {
	for k, v := range other {
		d[k] = v
	}
	return d
}

// Clone returns a shallow copy of d.
func (d Detail) Clone() Detail {
	c := make(Detail, len(d))
	for k, v := range d {
		c[k] = v
	}
	return c
}

// GetString returns the value for key cast to string.
func (d Detail) GetString(key string) (string, bool) {
	v, ok := d[key]
	if !ok {
		return "", false
	}
	return cast.ToString(v), true
}

// GetInt returns the value for key cast to int.
func (d Detail) GetInt(key string) (int, bool) {
	v, ok := d[key]
	if !ok {
		return 0, false
	}
	return cast.ToInt(v), true
}

// GetBool returns the value for key cast to bool.
func (d Detail) GetBool(key string) (bool, bool) {
	v, ok := d[key]
	if !ok {
		return false, false
	}
	return cast.ToBool(v), true
}

// GetMap returns the value for key cast to a nested Detail.
func (d Detail) GetMap(key string) (Detail, bool) {
	v, ok := d[key]
	if !ok {
		return nil, false
	}
	m, err := cast.ToStringMapE(v)
	if err != nil {
		return nil, false
	}
	return Detail(m), true
}

// ToolStatus extracts the external tool's own status field from a parsed
// payload. External tools report a numeric "status" in their JSON output;
// its presence is what makes a payload recognizable as belonging to the
// tool's error vocabulary.
func ToolStatus(d Detail) (int, bool) {
	v, ok := d["status"]
	if !ok {
		return 0, false
	}
	status, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}
	return status, true
}
