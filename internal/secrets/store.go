package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// lightweight per-user secret store (file, 0600) with AES-GCM obfuscation.
// Not a replacement for OS keychains but avoids plain-text tokens.

const fileName = "secrets.json"

// ErrNotFound is returned when no secret is stored under a name.
var ErrNotFound = errors.New("secret not found")

type secretFile struct {
	Entries map[string]string `json:"entries"` // name -> base64(ciphertext of JSON value)
}

// Store keeps named JSON values encrypted in a single file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a store backed by dir/secrets.json.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, fileName)}
}

// DefaultStore returns the per-user store under the OS config dir.
func DefaultStore() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return NewStore(filepath.Join(dir, "spotifydaily")), nil
}

// Save encrypts v and stores it under name.
func (s *Store) Save(name string, v any) error {
	if name = norm(name); name == "" {
		return fmt.Errorf("secret name required")
	}
	plain, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode secret: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := s.load()
	if err != nil {
		return err
	}
	if sf.Entries == nil {
		sf.Entries = map[string]string{}
	}
	ct, err := encrypt(plain)
	if err != nil {
		return err
	}
	sf.Entries[name] = base64.StdEncoding.EncodeToString(ct)
	return s.save(sf)
}

// Load decrypts the value stored under name into dest.
func (s *Store) Load(name string, dest any) error {
	if name = norm(name); name == "" {
		return fmt.Errorf("secret name required")
	}
	s.mu.Lock()
	sf, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return err
	}
	enc, ok := sf.Entries[name]
	if !ok {
		return ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(pt, dest)
}

// Delete removes name. Deleting a missing name is not an error.
func (s *Store) Delete(name string) error {
	if name = norm(name); name == "" {
		return fmt.Errorf("secret name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sf, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := sf.Entries[name]; !ok {
		return nil
	}
	delete(sf.Entries, name)
	return s.save(sf)
}

func (s *Store) load() (secretFile, error) {
	var sf secretFile
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return secretFile{}, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, err
	}
	return sf, nil
}

func (s *Store) save(sf secretFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil { // restrict directory
		return err
	}
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func norm(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func masterKey() []byte {
	user := os.Getenv("USER")
	base := fmt.Sprintf("spotifydaily-%s-%s", runtime.GOOS, user)
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
