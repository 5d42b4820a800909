package bytecode

// Class is a class definition with its methods in declaration order.
type Class struct {
	// Type is the class type descriptor (e.g., "Lcom/example/Main;").
	Type string
	// SuperClass is the super class type descriptor, empty for the root.
	SuperClass string
	// AccessFlags are the class modifiers.
	AccessFlags AccessFlags
	// Methods are the class methods in declaration order.
	Methods []*Method
}

// AddMethod appends a method and sets its defining class.
func (c *Class) AddMethod(m *Method) {
	m.DefiningClass = c.Type
	c.Methods = append(c.Methods, m)
}

// FindMethod returns the first method named name and its index.
func (c *Class) FindMethod(name string) (*Method, int, bool) {
	for i, m := range c.Methods {
		if m.Name == name {
			return m, i, true
		}
	}
	return nil, -1, false
}

// clone returns a deep copy of the class and all of its methods.
func (c *Class) clone() *Class {
	cp := *c
	cp.Methods = make([]*Method, len(c.Methods))
	for i, m := range c.Methods {
		cp.Methods[i] = m.clone()
	}
	return &cp
}
