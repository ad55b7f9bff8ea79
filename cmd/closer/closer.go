package closer

import (
	"sync"

	"go.uber.org/zap"

	"github.com/meverselabs/stoclient/common/rlog"
)

// Closer is Closer inferface
type Closer interface {
	Close()
}

// Func adapts a function to a Closer
type Func func()

// Close calls f
func (f Func) Close() {
	f()
}

// ErrorFunc adapts a function returning an error to a Closer
type ErrorFunc func() error

// Manager handles closers
type Manager struct {
	sync.Mutex
	isClosed bool
	names    []string
	closers  []Closer
	logger   *zap.Logger
}

// NewManager returns a Manager
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger: rlog.OrNop(logger),
	}
}

// Add adds a closer with a name
func (cm *Manager) Add(name string, c Closer) {
	cm.Lock()
	defer cm.Unlock()
	cm.names = append(cm.names, name)
	cm.closers = append(cm.closers, c)
}

// AddError adds a closer returning an error, the error is logged
func (cm *Manager) AddError(name string, fn ErrorFunc) {
	cm.Add(name, Func(func() {
		if err := fn(); err != nil {
			cm.logger.Warn("close failed", zap.String("name", name), zap.Error(err))
		}
	}))
}

// CloseAll closes the closers in the reverse order of the addition
func (cm *Manager) CloseAll() {
	cm.Lock()
	if cm.isClosed {
		cm.Unlock()
		return
	}
	cm.isClosed = true
	names, closers := cm.names, cm.closers
	cm.Unlock()

	for i := len(closers) - 1; i >= 0; i-- {
		cm.logger.Debug("close", zap.String("name", names[i]))
		closers[i].Close()
	}
}
