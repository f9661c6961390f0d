package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Politiques d'application de la remise de relance
const (
	DiscountStack     = "stack"     // s'ajoute à la remise produit (plafonnée à 100%)
	DiscountSupersede = "supersede" // remplace la remise produit si elle est plus forte
)

type HTTPConfig struct {
	Port        string
	CORSOrigins []string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host     string
	Password string
}

type ElasticConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	PublicURL string
}

type ScyllaConfig struct {
	Hosts    []string
	Keyspace string
	Username string
	Password string
	CAPath   string // TLS activé si renseigné
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
}

type MailchimpConfig struct {
	APIKey string
	ListID string
}

type ReminderConfig struct {
	Cron           string
	Discount       float64
	DiscountPolicy string
}

type ImageConfig struct {
	MaxBox    int
	Quality   int
	MaxFiles  int
	MaxSizes  int
	Workers   int
	MaxPixels int // largeur x hauteur déclarées par l'en-tête, avant décodage
}

// Config regroupe toute la configuration du processus. Elle est construite une
// seule fois au démarrage puis passée explicitement à chaque composant.
type Config struct {
	HTTP      HTTPConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Elastic   ElasticConfig
	Storage   StorageConfig
	Scylla    ScyllaConfig
	SMTP      SMTPConfig
	Stripe    StripeConfig
	Mailchimp MailchimpConfig
	Reminder  ReminderConfig
	Image     ImageConfig
}

// Load charge le fichier .env (s'il existe) puis lit l'environnement.
func Load() Config {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("⚠️  Aucun fichier .env trouvé, on continue avec les variables d'environnement du système")
	} else {
		log.Println("✅ Fichier .env chargé avec succès")
	}
	return FromEnv()
}

// FromEnv construit la configuration à partir des variables d'environnement,
// avec des valeurs par défaut raisonnables pour le développement.
func FromEnv() Config {
	cfg := Config{
		HTTP: HTTPConfig{
			Port:        getenv("PORT", "8080"),
			CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173")),
		},
		Mongo: MongoConfig{
			URI:      os.Getenv("MONGO_URI"),
			Database: getenv("MONGO_DATABASE", "furniro"),
		},
		Redis: RedisConfig{
			Host:     os.Getenv("REDIS_HOST"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Elastic: ElasticConfig{
			URL:      os.Getenv("ELASTIC_URL"),
			User:     os.Getenv("ELASTIC_USER"),
			Password: os.Getenv("ELASTIC_PASSWORD"),
			Index:    getenv("ELASTIC_INDEX", "products"),
		},
		Storage: StorageConfig{
			Endpoint:  getenv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    getenvBool("MINIO_USE_SSL", false),
			Bucket:    os.Getenv("MINIO_BUCKET"),
			Region:    os.Getenv("MINIO_REGION"),
			PublicURL: os.Getenv("MINIO_PUBLIC_URL"),
		},
		Scylla: ScyllaConfig{
			Hosts:    splitList(os.Getenv("SCYLLA_HOSTS")),
			Keyspace: getenv("SCYLLA_KEYSPACE", "furniro_audit"),
			Username: os.Getenv("SCYLLA_USERNAME"),
			Password: os.Getenv("SCYLLA_PASSWORD"),
			CAPath:   os.Getenv("SCYLLA_SSL_CA_PATH"),
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenvInt("SMTP_PORT", 465),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Stripe: StripeConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Currency:      strings.ToLower(getenv("STRIPE_CURRENCY", "eur")),
			SuccessURL:    getenv("FRONTEND_SUCCESS_URL", "http://localhost:5173/success"),
			CancelURL:     getenv("FRONTEND_CANCEL_URL", "http://localhost:5173/cancel"),
		},
		Mailchimp: MailchimpConfig{
			APIKey: os.Getenv("MAILCHIMP_API_KEY"),
			ListID: os.Getenv("MAILCHIMP_LIST_ID"),
		},
		Reminder: ReminderConfig{
			Cron:           getenv("REMINDER_CRON", "0 14 * * *"),
			Discount:       getenvFloat("REMINDER_DISCOUNT", 3),
			DiscountPolicy: strings.ToLower(getenv("REMINDER_DISCOUNT_POLICY", DiscountStack)),
		},
		Image: ImageConfig{
			MaxBox:    getenvInt("IMAGE_MAX_BOX", 1080),
			Quality:   getenvInt("IMAGE_QUALITY", 80),
			MaxFiles:  getenvInt("IMAGE_MAX_FILES", 5),
			MaxSizes:  getenvInt("IMAGE_MAX_SIZES", 5),
			Workers:   getenvInt("IMAGE_WORKERS", 4),
			MaxPixels: getenvInt("IMAGE_MAX_PIXELS", 40_000_000),
		},
	}

	if cfg.SMTP.From == "" {
		cfg.SMTP.From = cfg.SMTP.Username
	}
	return cfg
}

// Validate vérifie les paramètres sans lesquels le serveur ne peut pas démarrer.
func (c Config) Validate() error {
	var missing []string
	if c.Mongo.URI == "" {
		missing = append(missing, "MONGO_URI")
	}
	if c.Storage.Bucket == "" {
		missing = append(missing, "MINIO_BUCKET")
	}
	if c.Stripe.SecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}
	if c.Stripe.WebhookSecret == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("variables manquantes: %s", strings.Join(missing, ", "))
	}

	if c.Reminder.Discount < 0 || c.Reminder.Discount > 100 {
		return fmt.Errorf("REMINDER_DISCOUNT doit être compris entre 0 et 100 (reçu %.2f)", c.Reminder.Discount)
	}
	if c.Reminder.DiscountPolicy != DiscountStack && c.Reminder.DiscountPolicy != DiscountSupersede {
		return fmt.Errorf("REMINDER_DISCOUNT_POLICY inconnue: %q", c.Reminder.DiscountPolicy)
	}
	if c.Image.MaxBox <= 0 || c.Image.Quality <= 0 || c.Image.Quality > 100 || c.Image.MaxPixels <= 0 {
		return fmt.Errorf("configuration image invalide (box=%d, qualité=%d, pixels=%d)",
			c.Image.MaxBox, c.Image.Quality, c.Image.MaxPixels)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %d utilisée", k, v, def)
		return def
	}
	return n
}

func getenvFloat(k string, def float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("⚠️ %s invalide (%q), valeur par défaut %.2f utilisée", k, v, def)
		return def
	}
	return f
}

func getenvBool(k string, def bool) bool {
	v := strings.ToLower(os.Getenv(k))
	if v == "" {
		return def
	}
	return v == "true" || v == "1"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
