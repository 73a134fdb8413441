package db

// Repositories provides access to all database repositories
type Repositories struct {
	Users      *UserRepository
	Parties    *PartyRepository
	MediaItems *MediaItemRepository
}

// NewRepositories creates a new repository collection
func NewRepositories(db *DB) *Repositories {
	return &Repositories{
		Users:      NewUserRepository(db),
		Parties:    NewPartyRepository(db),
		MediaItems: NewMediaItemRepository(db),
	}
}
