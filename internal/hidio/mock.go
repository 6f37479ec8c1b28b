package hidio

import "sync"

// WriteOp records one report write observed by the mock transport.
type WriteOp struct {
	Path string
	Type ReportType
	Data []byte
}

// Mock is an in-memory Transport for tests. Configure Interfaces before use;
// inject input reports with Emit.
type Mock struct {
	mu       sync.Mutex
	ifaces   []Interface
	writes   []WriteOp
	props    map[string]int
	handlers map[string]map[int]InputHandler
	nextID   int

	// WriteErr, when set, is consulted for every write; a non-nil return is
	// surfaced to the caller and the write is not recorded.
	WriteErr func(op WriteOp) error

	// AllowProperties makes Read/WriteProperty succeed against an in-memory
	// map instead of returning ErrPropertyUnsupported.
	AllowProperties bool
}

func NewMock(ifaces ...Interface) *Mock {
	return &Mock{
		ifaces:   ifaces,
		props:    make(map[string]int),
		handlers: make(map[string]map[int]InputHandler),
	}
}

func (m *Mock) Enumerate(uint16, uint16) ([]Interface, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Interface, len(m.ifaces))
	copy(out, m.ifaces)
	return out, nil
}

func (m *Mock) RegisterInputCallback(iface Interface, fn InputHandler) (func(), error) {
	m.mu.Lock()
	if m.handlers[iface.Path] == nil {
		m.handlers[iface.Path] = make(map[int]InputHandler)
	}
	id := m.nextID
	m.nextID++
	m.handlers[iface.Path][id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.handlers[iface.Path], id)
		m.mu.Unlock()
	}, nil
}

func (m *Mock) WriteReport(iface Interface, typ ReportType, data []byte) error {
	op := WriteOp{Path: iface.Path, Type: typ, Data: append([]byte(nil), data...)}
	if m.WriteErr != nil {
		if err := m.WriteErr(op); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.writes = append(m.writes, op)
	m.mu.Unlock()
	return nil
}

func (m *Mock) ReadProperty(iface Interface, key string) (int, error) {
	if !m.AllowProperties {
		return 0, ErrPropertyUnsupported
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.props[iface.Path+"/"+key], nil
}

func (m *Mock) WriteProperty(iface Interface, key string, value int) error {
	if !m.AllowProperties {
		return ErrPropertyUnsupported
	}
	m.mu.Lock()
	m.props[iface.Path+"/"+key] = value
	m.mu.Unlock()
	return nil
}

func (m *Mock) Close() error { return nil }

// Emit delivers one raw input report to every handler registered on path.
func (m *Mock) Emit(path string, data []byte) {
	m.mu.Lock()
	handlers := make([]InputHandler, 0, len(m.handlers[path]))
	for _, fn := range m.handlers[path] {
		handlers = append(handlers, fn)
	}
	m.mu.Unlock()
	for _, fn := range handlers {
		fn(append([]byte(nil), data...))
	}
}

// Writes returns a copy of all recorded writes.
func (m *Mock) Writes() []WriteOp {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]WriteOp, len(m.writes))
	copy(out, m.writes)
	return out
}

// Properties returns a copy of the property store.
func (m *Mock) Properties() map[string]int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int, len(m.props))
	for k, v := range m.props {
		out[k] = v
	}
	return out
}
