package relational

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/ecom/internal/domain"
)

func openTestSession(t *testing.T) *Session {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	s, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: dsn}, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	require.NoError(t, AutoMigrate(context.Background(), s))
	return s
}

func newCustomer(name, city string, contacts ...string) domain.Customer {
	return domain.Customer{
		Name: name,
		Address: &domain.Address{
			Street:   "1 Main St",
			City:     city,
			Contacts: contacts,
		},
	}
}

type opRecord struct {
	kind domain.Kind
	op   string
	err  error
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []opRecord
}

func (r *recordingObserver) ObserveOperation(kind domain.Kind, op string, err error, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, opRecord{kind: kind, op: op, err: err})
}

func (r *recordingObserver) snapshot() []opRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]opRecord(nil), r.ops...)
}
