package cache

import (
	"context"
	"strconv"
	"time"
)

const (
	ProductCacheTTL    = 10 * time.Minute
	CategoriesCacheTTL = time.Hour
	StripeEventTTL     = 72 * time.Hour
	SweepLockTTL       = 10 * time.Minute
)

// Clés Redis
const (
	CategoriesKey   = "categories:all"
	productPrefix   = "product:"
	stripeEventPref = "stripe:event:"
	SweepLockKey    = "lock:reminder_sweep"
)

// ProductKey inclut la version du produit : une écriture tardive d'un lecteur
// lent atterrit sous une ancienne version que plus personne ne lit.
func ProductKey(id string, version int64) string {
	return productPrefix + id + ":v" + strconv.FormatInt(version, 10)
}
func ProductVersionKey(id string) string { return productPrefix + id + ":version" }
func StripeEventKey(id string) string    { return stripeEventPref + id }

// Store est l'abstraction utilisée par les services. Une implémentation Redis
// et une implémentation vide (quand Redis n'est pas configuré) existent.
type Store interface {
	// GetJSON décode la valeur dans dst ; found vaut false si la clé est absente.
	GetJSON(ctx context.Context, key string, dst any) (found bool, err error)
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
	// SetNX pose la clé si elle n'existe pas ; acquired vaut false sinon.
	SetNX(ctx context.Context, key string, ttl time.Duration) (acquired bool, err error)
	// Incr incrémente un compteur à fenêtre fixe et retourne la nouvelle valeur.
	// Avec window <= 0 le compteur n'expire pas.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Noop ne met rien en cache : chaque lecture est un miss, chaque verrou est
// accordé et aucun compteur ne progresse.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, any) (bool, error) { return false, nil }
func (Noop) SetJSON(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, ...string) error { return nil }
func (Noop) Exists(context.Context, string) (bool, error) { return false, nil }
func (Noop) SetNX(context.Context, string, time.Duration) (bool, error) { return true, nil }
func (Noop) Incr(context.Context, string, time.Duration) (int64, error) { return 0, nil }
