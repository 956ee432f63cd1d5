package api

import "encoding/json"

// Projection is a {"field": 1} include or {"field": 0} exclude field
// selection applied when rendering records. The id field is kept by default
// in include mode unless explicitly excluded.
type Projection struct {
	include bool
	fields  map[string]bool
}

func toProjection(spec map[string]interface{}) *Projection {
	p := &Projection{fields: make(map[string]bool, len(spec))}
	for field, raw := range spec {
		included, ok := raw.(float64)
		if !ok {
			continue
		}
		if included != 0 {
			p.include = true
			p.fields[field] = true
		} else {
			p.fields[field] = false
		}
	}
	return p
}

// Apply renders record as a field map with the projection applied. Records
// marshal through their JSON form, so field names match the wire format.
func (p *Projection) Apply(record interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	out := make(map[string]interface{})
	for field, value := range fields {
		if p.keeps(field) {
			out[field] = value
		}
	}
	return out, nil
}

// ApplyAll renders a slice of records.
func (p *Projection) ApplyAll(records interface{}) ([]map[string]interface{}, error) {
	raw, err := json.Marshal(records)
	if err != nil {
		return nil, err
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	out := make([]map[string]interface{}, 0, len(items))
	for _, fields := range items {
		projected := make(map[string]interface{})
		for field, value := range fields {
			if p.keeps(field) {
				projected[field] = value
			}
		}
		out = append(out, projected)
	}
	return out, nil
}

func (p *Projection) keeps(field string) bool {
	included, listed := p.fields[field]
	if p.include {
		if field == "id" {
			return !listed || included
		}
		return listed && included
	}
	return !listed || included
}
