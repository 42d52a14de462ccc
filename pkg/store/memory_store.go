package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/huandu/go-clone"
	"github.com/pkg/errors"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
)

// MemoryStore keeps everything in process memory. Every operation runs under one
// lock, which makes BookSlot's check-and-set atomic.
type MemoryStore struct {
	mu       sync.Mutex
	accounts map[string]*Account
	sessions map[string]*turns.Session
	info     []BusinessInfo
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: map[string]*Account{},
		sessions: map[string]*turns.Session{},
	}
}

func (m *MemoryStore) account(id string, create bool) *Account {
	a, ok := m.accounts[id]
	if !ok && create {
		a = &Account{AccountID: id}
		m.accounts[id] = a
	}
	return a
}

func (m *MemoryStore) FindClient(ctx context.Context, accountID, email, phone string) (*Client, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(accountID, false)
	if a == nil {
		return nil, nil
	}
	for _, c := range a.Clients {
		if (email != "" && c.Email == email) || (phone != "" && c.Phone == phone) {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) InsertClient(ctx context.Context, accountID string, c Client) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(accountID, true)
	for _, existing := range a.Clients {
		if existing.Email == c.Email {
			return false, nil
		}
	}
	a.Clients = append(a.Clients, c)
	return true, nil
}

func (m *MemoryStore) UpdateClient(ctx context.Context, accountID, email string, u ClientUpdate) (bool, error) {
	if u.Empty() {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(accountID, false)
	if a == nil {
		return false, nil
	}
	for i := range a.Clients {
		if a.Clients[i].Email != email {
			continue
		}
		if u.Name != "" {
			a.Clients[i].Name = u.Name
		}
		if u.Email != "" {
			a.Clients[i].Email = u.Email
		}
		if u.Phone != "" {
			a.Clients[i].Phone = u.Phone
		}
		return true, nil
	}
	return false, nil
}

func (m *MemoryStore) DeleteClient(ctx context.Context, accountID, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(accountID, false)
	if a == nil {
		return false, nil
	}
	kept := a.Clients[:0]
	removed := false
	for _, c := range a.Clients {
		if c.Email == email {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	a.Clients = kept
	return removed, nil
}

func (m *MemoryStore) Slots(ctx context.Context, accountID string, t BookingType, booked bool) ([]Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(accountID, false)
	if a == nil {
		return nil, nil
	}
	var out []Slot
	for _, s := range *a.slots(t) {
		if s.IsBooked == booked {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStore) FindSlot(ctx context.Context, accountID string, t BookingType, startTime string) (*Slot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(accountID, false)
	if a == nil {
		return nil, nil
	}
	for _, s := range *a.slots(t) {
		if s.StartTime == startTime {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) BookSlot(ctx context.Context, accountID string, t BookingType, startTime string, b Booking) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a := m.account(accountID, false)
	if a == nil {
		return false, nil
	}
	slots := *a.slots(t)
	for i := range slots {
		if slots[i].StartTime != startTime || slots[i].IsBooked {
			continue
		}
		slots[i].IsBooked = true
		slots[i].ClientEmail = b.ClientEmail
		slots[i].Title = b.Title
		slots[i].Location = b.Location
		return true, nil
	}
	return false, nil
}

func (m *MemoryStore) UpsertAccount(ctx context.Context, a Account) error {
	if a.AccountID == "" {
		return errors.New("account_id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := clone.Clone(a).(Account)
	m.accounts[a.AccountID] = &c
	return nil
}

// Account returns a copy of the stored account, for inspection.
func (m *MemoryStore) Account(accountID string) (Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.accounts[accountID]
	if !ok {
		return Account{}, false
	}
	return clone.Clone(*a).(Account), true
}

func (m *MemoryStore) LoadSession(ctx context.Context, id string) (*turns.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return turns.NewSession(id), nil
	}
	return s.Clone(), nil
}

func (m *MemoryStore) SaveSession(ctx context.Context, s *turns.Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := s.Clone()
	c.UpdatedAt = time.Now().UTC()
	m.sessions[s.ID] = c
	return nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) FindBusinessInfo(ctx context.Context, accountID, topic string) ([]BusinessInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(strings.TrimSpace(topic))
	var out []BusinessInfo
	for _, bi := range m.info {
		if bi.AccountID != accountID {
			continue
		}
		if needle == "" ||
			strings.Contains(strings.ToLower(bi.Topic), needle) ||
			strings.Contains(strings.ToLower(bi.Content), needle) {
			out = append(out, bi)
		}
	}
	return out, nil
}

func (m *MemoryStore) UpsertBusinessInfo(ctx context.Context, info BusinessInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.info {
		if m.info[i].AccountID == info.AccountID && m.info[i].Topic == info.Topic {
			m.info[i] = info
			return nil
		}
	}
	m.info = append(m.info, info)
	return nil
}

func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}
