package carrier

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Param is a single query value or a sequence. Sequences go on the wire as
// repeated key[]=value pairs.
type Param struct {
	Values []string
	List   bool
}

// Params are query parameters keyed by name without the [] suffix.
type Params map[string]Param

func String(v string) Param { return Param{Values: []string{v}} }

func Int(v int) Param { return String(strconv.Itoa(v)) }

func Float(v float64) Param { return String(strconv.FormatFloat(v, 'f', -1, 64)) }

func List(vs ...string) Param { return Param{Values: vs, List: true} }

// SetString adds a scalar, skipping empty strings.
func (p Params) SetString(key, v string) Params {
	if v != "" {
		p[key] = String(v)
	}
	return p
}

// SetInt adds a scalar, skipping non-positive values.
func (p Params) SetInt(key string, v int) Params {
	if v > 0 {
		p[key] = Int(v)
	}
	return p
}

// SetList adds a sequence, skipping empty ones.
func (p Params) SetList(key string, vs []string) Params {
	if len(vs) > 0 {
		p[key] = List(vs...)
	}
	return p
}

// Encode serializes params in key order: scalars as key=v, sequences as
// repeated key[]=v.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		v := p[k]
		name := k
		if v.List {
			name = k + "[]"
		} else if len(v.Values) > 1 {
			v.Values = v.Values[:1]
		}
		for _, val := range v.Values {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(name))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(val))
		}
	}
	return sb.String()
}

// ParseQuery is the inverse of Encode: key[] entries collapse into a sequence
// under key, other keys keep their last value. A sequence wins over a scalar
// of the same name.
func ParseQuery(q url.Values) Params {
	out := make(Params, len(q))
	for k, vs := range q {
		if clean, ok := strings.CutSuffix(k, "[]"); ok && len(vs) > 0 {
			out[clean] = List(vs...)
		}
	}
	for k, vs := range q {
		if strings.HasSuffix(k, "[]") || len(vs) == 0 {
			continue
		}
		if _, ok := out[k]; ok {
			continue
		}
		out[k] = String(vs[len(vs)-1])
	}
	return out
}
