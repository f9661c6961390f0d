package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"furniro_back_end/internal/config"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// =============================================
// MONGODB (catalogue, commandes, contact)
// =============================================

// ConnectMongo ouvre le client MongoDB et retourne la base configurée.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(10 * time.Second).
		SetMaxPoolSize(50)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("erreur connexion MongoDB: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("MongoDB ne répond pas: %v", err)
	}

	log.Printf("✅ Connecté à MongoDB (base %s)", cfg.Database)
	return client, client.Database(cfg.Database), nil
}

// =============================================
// ELASTICSEARCH (recherche produits)
// =============================================

// ConnectElastic retourne nil sans erreur si ELASTIC_URL n'est pas défini :
// la recherche retombe alors sur MongoDB.
func ConnectElastic(cfg config.ElasticConfig) (*elasticsearch.Client, error) {
	if cfg.URL == "" {
		log.Println("⚠️ ELASTIC_URL non configuré, recherche plein texte via MongoDB")
		return nil, nil
	}

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur création client Elasticsearch: %v", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("erreur connexion Elasticsearch: %v", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("Elasticsearch a répondu %s", res.Status())
	}

	log.Println("✅ Connecté à Elasticsearch")
	return client, nil
}

// =============================================
// MINIO (images produits)
// =============================================

// ConnectMinIO ouvre le client et crée le bucket s'il n'existe pas.
func ConnectMinIO(ctx context.Context, cfg config.StorageConfig) (*minio.Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("erreur connexion MinIO: %v", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("erreur vérification bucket MinIO: %v", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("erreur création bucket MinIO: %v", err)
		}
		log.Println("🪣 Bucket créé :", cfg.Bucket)
	} else {
		log.Println("🪣 Bucket MinIO déjà présent :", cfg.Bucket)
	}

	log.Println("✅ Connecté à MinIO :", cfg.Endpoint)
	return client, nil
}

// =============================================
// SCYLLA DB (journal d'audit des commandes)
// =============================================

// ConnectScylla retourne nil sans erreur si SCYLLA_HOSTS n'est pas défini :
// l'audit est alors désactivé.
func ConnectScylla(cfg config.ScyllaConfig) (*gocql.Session, error) {
	if len(cfg.Hosts) == 0 {
		log.Println("⚠️ SCYLLA_HOSTS non configuré, audit des commandes désactivé")
		return nil, nil
	}

	// Le keyspace doit exister avant d'ouvrir une session dessus
	bootstrap, err := newScyllaCluster(cfg, "").CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur connexion ScyllaDB: %v", err)
	}
	err = bootstrap.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1}`,
		cfg.Keyspace)).Exec()
	bootstrap.Close()
	if err != nil {
		return nil, fmt.Errorf("erreur création keyspace %s: %v", cfg.Keyspace, err)
	}

	session, err := newScyllaCluster(cfg, cfg.Keyspace).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("erreur création session pour %s: %v", cfg.Keyspace, err)
	}

	log.Printf("✅ Session ScyllaDB pour keyspace '%s' (utilisateur: %s)", cfg.Keyspace, cfg.Username)
	return session, nil
}

func newScyllaCluster(cfg config.ScyllaConfig, keyspace string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.Quorum
	cluster.Timeout = 5 * time.Second
	cluster.NumConns = 4
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second
	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}
	if cfg.CAPath != "" {
		cluster.SslOpts = &gocql.SslOptions{CaPath: cfg.CAPath, EnableHostVerification: true}
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}
