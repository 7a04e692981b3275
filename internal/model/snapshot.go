package model

// SnapshotVersion is the current document format.
const SnapshotVersion = 1

// Snapshot is the whole persisted state, read and written as one unit.
type Snapshot struct {
	Version           int                     `json:"version"`
	Users             []User                  `json:"users"`
	Products          []Product               `json:"products"`
	StockTransactions []StockTransaction      `json:"stockTransactions"`
	Sales             []Sale                  `json:"sales"`
	Settings          Settings                `json:"settings"`
	LoginAttempts     map[string]LoginAttempt `json:"loginAttempts"`
}

// NewSnapshot returns an empty store with default settings.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Version:           SnapshotVersion,
		Users:             []User{},
		Products:          []Product{},
		StockTransactions: []StockTransaction{},
		Sales:             []Sale{},
		Settings:          DefaultSettings(),
		LoginAttempts:     map[string]LoginAttempt{},
	}
}

// Normalize fills nil collections left by older or hand-edited documents.
func (s *Snapshot) Normalize() {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Products == nil {
		s.Products = []Product{}
	}
	if s.StockTransactions == nil {
		s.StockTransactions = []StockTransaction{}
	}
	if s.Sales == nil {
		s.Sales = []Sale{}
	}
	if s.LoginAttempts == nil {
		s.LoginAttempts = map[string]LoginAttempt{}
	}
	if s.Settings == (Settings{}) {
		s.Settings = DefaultSettings()
	}
}

// UserIndex returns the position of the user with id, or -1.
func (s *Snapshot) UserIndex(id string) int {
	for i := range s.Users {
		if s.Users[i].ID == id {
			return i
		}
	}
	return -1
}

// UserByUsername returns the user with the exact username, or nil.
func (s *Snapshot) UserByUsername(username string) *User {
	for i := range s.Users {
		if s.Users[i].Username == username {
			return &s.Users[i]
		}
	}
	return nil
}

// UserByID returns the user with id, or nil.
func (s *Snapshot) UserByID(id string) *User {
	if i := s.UserIndex(id); i >= 0 {
		return &s.Users[i]
	}
	return nil
}

// ProductIndex returns the position of the product with id, or -1.
func (s *Snapshot) ProductIndex(id string) int {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return i
		}
	}
	return -1
}

// ProductByID returns the product with id, or nil.
func (s *Snapshot) ProductByID(id string) *Product {
	if i := s.ProductIndex(id); i >= 0 {
		return &s.Products[i]
	}
	return nil
}
