package calipso

import "sort"

// Collection holds the arrays read from one or more CALIPSO files, keyed by
// canonical field name. All per-observation arrays share the same first
// dimension.
//
// Known fields are listed by Schema; any other name is accepted too so that
// datasets added in newer product versions are not lost.
type Collection struct {
	arrays map[Field]*Array
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{arrays: make(map[Field]*Array, len(schema))}
}

// Get returns the array stored under f.
func (c *Collection) Get(f Field) (*Array, error) {
	a, ok := c.arrays[f]
	if !ok || a == nil {
		return nil, &MissingFieldError{Field: f}
	}
	return a, nil
}

// Has reports whether f is populated.
func (c *Collection) Has(f Field) bool {
	return c.arrays[f] != nil
}

// Set stores a under f. A nil array removes the field.
func (c *Collection) Set(f Field, a *Array) {
	if a == nil {
		delete(c.arrays, f)
		return
	}
	c.arrays[f] = a
}

// Delete removes f.
func (c *Collection) Delete(f Field) {
	delete(c.arrays, f)
}

// Names returns the populated field names in lexical order.
func (c *Collection) Names() []Field {
	names := make([]Field, 0, len(c.arrays))
	for f := range c.arrays {
		names = append(names, f)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// IsEmpty reports whether no field holds any observation.
func (c *Collection) IsEmpty() bool {
	if c == nil {
		return true
	}
	for _, a := range c.arrays {
		if a != nil && a.Len() > 0 {
			return false
		}
	}
	return true
}

// Len returns the number of observations: the length of latitude, or of the
// first populated field if latitude is absent.
func (c *Collection) Len() int {
	if a, ok := c.arrays[Latitude]; ok {
		return a.Len()
	}
	if names := c.Names(); len(names) > 0 {
		return c.arrays[names[0]].Len()
	}
	return 0
}

// SelectColumn replaces the rank 2 array stored under f with its column j.
func (c *Collection) SelectColumn(f Field, j int) error {
	a, err := c.Get(f)
	if err != nil {
		return err
	}
	col, err := a.Column(j)
	if err != nil {
		return withField(err, f)
	}
	c.arrays[f] = col
	return nil
}

// Concat appends the observations of other to c and returns the result.
//
// An empty operand is absorbed into the other one. Fields populated on one
// side only take that side's array. Fields whose arrays have the same rank
// and matching trailing dimensions are joined along the first axis, so raw
// collections from ReadFile and post-processed ones from Read both keep
// equal leading lengths; any other field takes the array of other. c is
// modified in place, other is not.
func (c *Collection) Concat(other *Collection) *Collection {
	if other.IsEmpty() {
		if c == nil {
			return NewCollection()
		}
		return c
	}
	if c.IsEmpty() {
		return other
	}
	for f, b := range other.arrays {
		a, ok := c.arrays[f]
		if !ok || a == nil {
			c.arrays[f] = b
			continue
		}
		if joined, ok := concatRows(a, b); ok {
			c.arrays[f] = joined
		} else {
			c.arrays[f] = b
		}
	}
	return c
}

// Equal reports whether both collections hold the same fields with equal
// arrays.
func (c *Collection) Equal(other *Collection) bool {
	if len(c.arrays) != len(other.arrays) {
		return false
	}
	for f, a := range c.arrays {
		if !a.Equal(other.arrays[f]) {
			return false
		}
	}
	return true
}

// Summary returns the summary information about the collection suitable for
// logging.
func (c *Collection) Summary() []any {
	names := c.Names()
	fields := make([]string, len(names))
	for i, f := range names {
		fields[i] = string(f)
	}
	return []any{
		"profiles", c.Len(),
		"fieldCnt", len(fields),
		"fields", fields,
	}
}
