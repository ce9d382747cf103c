package security

import (
	"strconv"
	"sync"
	"time"

	"github.com/fxedge-labs/ea-portal/internal/models"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

// WebAuthnSettings are the relying-party parameters for passkey MFA.
type WebAuthnSettings struct {
	RPDisplayName string
	RPID          string
	RPOrigins     []string
}

// NewWebAuthn builds the relying party used for passkey registration and login.
func NewWebAuthn(settings WebAuthnSettings) (*webauthn.WebAuthn, error) {
	return webauthn.New(&webauthn.Config{
		RPDisplayName: settings.RPDisplayName,
		RPID:          settings.RPID,
		RPOrigins:     settings.RPOrigins,
	})
}

// WebAuthnUser adapts a portal user to the webauthn user contract. One
// credential per account is stored directly on the user row.
type WebAuthnUser struct {
	User *models.User
}

// WebAuthnID returns the user handle presented to authenticators.
func (u WebAuthnUser) WebAuthnID() []byte {
	return []byte(strconv.FormatUint(u.User.ID, 10))
}

// WebAuthnName returns the account name.
func (u WebAuthnUser) WebAuthnName() string { return u.User.Email }

// WebAuthnDisplayName returns the human-readable name.
func (u WebAuthnUser) WebAuthnDisplayName() string {
	if u.User.DisplayName != "" {
		return u.User.DisplayName
	}
	return u.User.Email
}

// WebAuthnIcon returns the deprecated icon URL; always empty.
func (u WebAuthnUser) WebAuthnIcon() string { return "" }

// WebAuthnCredentials returns the stored credential, if any.
func (u WebAuthnUser) WebAuthnCredentials() []webauthn.Credential {
	if len(u.User.PasskeyID) == 0 || len(u.User.PasskeyPublicKey) == 0 {
		return nil
	}
	credential := webauthn.Credential{
		ID:        u.User.PasskeyID,
		PublicKey: u.User.PasskeyPublicKey,
	}
	if u.User.PasskeySignCount != nil {
		credential.Authenticator.SignCount = *u.User.PasskeySignCount
	}
	if u.User.PasskeyBackupEligible != nil {
		credential.Flags.BackupEligible = *u.User.PasskeyBackupEligible
	}
	if u.User.PasskeyBackupState != nil {
		credential.Flags.BackupState = *u.User.PasskeyBackupState
	}
	return []webauthn.Credential{credential}
}

// HasPasskey reports whether the user has a passkey credential enrolled.
func HasPasskey(user *models.User) bool {
	return len(user.PasskeyID) > 0 && len(user.PasskeyPublicKey) > 0
}

// ApplyCredential writes a verified credential back onto the user row.
func ApplyCredential(user *models.User, credential *webauthn.Credential) {
	signCount := credential.Authenticator.SignCount
	backupEligible := credential.Flags.BackupEligible
	backupState := credential.Flags.BackupState

	user.PasskeyID = credential.ID
	user.PasskeyPublicKey = credential.PublicKey
	user.PasskeySignCount = &signCount
	user.PasskeyBackupEligible = &backupEligible
	user.PasskeyBackupState = &backupState
}

// ClearCredential removes the stored credential from the user row.
func ClearCredential(user *models.User) {
	user.PasskeyID = nil
	user.PasskeyPublicKey = nil
	user.PasskeySignCount = nil
	user.PasskeyBackupEligible = nil
	user.PasskeyBackupState = nil
}

// sessionTTL bounds how long a webauthn ceremony may stay open.
const sessionTTL = 5 * time.Minute

type sessionEntry struct {
	userID  uint64
	data    webauthn.SessionData
	expires time.Time
}

// SessionStore keeps in-flight webauthn ceremony state between the options
// and verify requests. State is process-local; an interrupted ceremony is
// simply restarted.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
}

// NewSessionStore constructs an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{entries: make(map[string]sessionEntry)}
}

// Put stores ceremony state and returns an opaque reference for the client.
func (s *SessionStore) Put(userID uint64, data webauthn.SessionData) string {
	ref := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, entry := range s.entries {
		if time.Now().After(entry.expires) {
			delete(s.entries, key)
		}
	}
	s.entries[ref] = sessionEntry{
		userID:  userID,
		data:    data,
		expires: time.Now().Add(sessionTTL),
	}
	return ref
}

// Take removes and returns ceremony state for the reference.
func (s *SessionStore) Take(ref string) (uint64, webauthn.SessionData, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[ref]
	if !ok {
		return 0, webauthn.SessionData{}, false
	}
	delete(s.entries, ref)
	if time.Now().After(entry.expires) {
		return 0, webauthn.SessionData{}, false
	}
	return entry.userID, entry.data, true
}
