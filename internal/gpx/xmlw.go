package gpx

// xmlw wraps a Serializer and keeps the first error; later calls are no-ops.
type xmlw struct {
	s   Serializer
	err error
}

func (x *xmlw) startDocument(encoding string, standalone bool) {
	if x.err == nil {
		x.err = x.s.StartDocument(encoding, standalone)
	}
}

func (x *xmlw) start(name string) {
	if x.err == nil {
		x.err = x.s.StartTag("", name)
	}
}

func (x *xmlw) attr(name, value string) {
	if x.err == nil {
		x.err = x.s.Attribute("", name, value)
	}
}

func (x *xmlw) text(value string) {
	if x.err == nil {
		x.err = x.s.Text(value)
	}
}

func (x *xmlw) end(name string) {
	if x.err == nil {
		x.err = x.s.EndTag("", name)
	}
}

// elem writes <name>value</name>.
func (x *xmlw) elem(name, value string) {
	x.start(name)
	x.text(value)
	x.end(name)
}

func (x *xmlw) flush() {
	if x.err == nil {
		x.err = x.s.Flush()
	}
}

func (x *xmlw) endDocument() {
	if x.err == nil {
		x.err = x.s.EndDocument()
	}
}
