package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

type Config struct {
	Http    *HTTPConfig
	Db      *PGDBCfg
	Redis   *RedisCfg
	Kafka   *KafkaCfg
	Shopify *ShopifyCfg
	Alerts  *AlertsCfg
	Sync    *SyncCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	// DedupLeaseTTL — время жизни эксклюзивной аренды по inventory_item_id.
	// Повторная доставка того же события внутри окна аренды отбрасывается.
	DedupLeaseTTL time.Duration
}

type KafkaCfg struct {
	Topic             string
	GroupID           string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
	Workers           int
	MaxAttempts       int
}

type ShopifyCfg struct {
	StoreDomain string
	AdminToken  string
	APIVersion  string
	// WebhookSecrets — упорядоченный список секретов для проверки HMAC-подписи.
	// Несколько значений позволяют ротацию секрета без простоя.
	WebhookSecrets  []string
	CallbackBaseURL string

	// Бюджеты fixed-window лимитера по классам API (запросов в минуту).
	RestRateLimit    int
	GraphQLRateLimit int
	RateRetryAfter   time.Duration
}

type AlertsCfg struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUser     string
	SMTPPassword string
	FromAddress  string
	CCEmails     []string
}

type SyncCfg struct {
	CronSpec    string
	PageSize    int
	PageDelay   time.Duration
	Timeout     time.Duration
	MaxAttempts int
	// Ceiling — количество, выше которого товар покидает зеркало «в зоне риска».
	Ceiling int32
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	shopify, err := loadShopifyCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	sync, err := loadSyncCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:    http,
		Db:      db,
		Redis:   redis,
		Kafka:   kafka,
		Shopify: shopify,
		Alerts:  loadAlertsCfg(),
		Sync:    sync,
	}, nil
}

// LoadWebhookSync загружает только то, что нужно CLI перерегистрации вебхуков:
// доступ к каталогу и Redis для лимитера запросов.
func LoadWebhookSync(log logger.Logger) (*ShopifyCfg, *RedisCfg, error) {
	shopify, err := loadShopifyCfg(log)
	if err != nil {
		return nil, nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return shopify, redis, nil
}

func loadShopifyCfg(log logger.Logger) (*ShopifyCfg, error) {
	const (
		defaultAPIVersion     = "2024-01"
		defaultRestLimit      = 40
		defaultGraphQLLimit   = 1000
		defaultRateRetryAfter = 2 * time.Second
	)

	domain := getEnv("SHOPIFY_STORE_DOMAIN")
	token := getEnv("SHOPIFY_ADMIN_TOKEN")
	if domain == "" || token == "" {
		log.Errorf(e.ErrMissingCredentials, "missing SHOPIFY_STORE_DOMAIN / SHOPIFY_ADMIN_TOKEN")
		return nil, e.ErrMissingCredentials
	}

	// webhook_secret и api_secret проверяются по очереди (ротация секрета)
	secrets := filterEmpty([]string{
		getEnv("SHOPIFY_WEBHOOK_SECRET"),
		getEnv("SHOPIFY_API_SECRET"),
	})
	if len(secrets) == 0 {
		return nil, fmt.Errorf("SHOPIFY_WEBHOOK_SECRET or SHOPIFY_API_SECRET is required")
	}

	restLimit, err := parseIntEnv("SHOPIFY_REST_RATE_LIMIT", defaultRestLimit)
	if err != nil {
		return nil, e.Wrap("SHOPIFY_REST_RATE_LIMIT", err)
	}

	graphqlLimit, err := parseIntEnv("SHOPIFY_GRAPHQL_RATE_LIMIT", defaultGraphQLLimit)
	if err != nil {
		return nil, e.Wrap("SHOPIFY_GRAPHQL_RATE_LIMIT", err)
	}

	retryAfter, err := parseDurationEnv("SHOPIFY_RATE_RETRY_AFTER", defaultRateRetryAfter)
	if err != nil {
		log.Errorf(err, "invalid SHOPIFY_RATE_RETRY_AFTER")
		return nil, err
	}

	return &ShopifyCfg{
		StoreDomain:      domain,
		AdminToken:       token,
		APIVersion:       getEnvOrDefault("SHOPIFY_API_VERSION", defaultAPIVersion),
		WebhookSecrets:   secrets,
		CallbackBaseURL:  getEnvOrDefault("CALLBACK_BASE_URL", "http://localhost"),
		RestRateLimit:    restLimit,
		GraphQLRateLimit: graphqlLimit,
		RateRetryAfter:   retryAfter,
	}, nil
}

func loadAlertsCfg() *AlertsCfg {
	return &AlertsCfg{
		SMTPHost:     getEnvOrDefault("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvOrDefault("SMTP_PORT", "25"),
		SMTPUser:     getEnv("SMTP_USER"),
		SMTPPassword: getEnv("SMTP_PASSWORD"),
		FromAddress:  getEnvOrDefault("ALERT_FROM_ADDRESS", "alerts@localhost"),
		CCEmails:     filterEmpty(strings.Split(getEnv("LOW_STOCK_CC_EMAILS"), ",")),
	}
}

func loadSyncCfg() (*SyncCfg, error) {
	const (
		defaultCronSpec    = "0 0 */6 * * *"
		defaultPageSize    = 250
		defaultPageDelay   = time.Second
		defaultTimeout     = time.Hour
		defaultMaxAttempts = 3
		defaultCeiling     = 20
	)

	pageSize, err := parseIntEnv("SYNC_PAGE_SIZE", defaultPageSize)
	if err != nil {
		return nil, e.Wrap("SYNC_PAGE_SIZE", err)
	}
	if pageSize > 250 {
		pageSize = 250 // максимум Shopify REST API
	}

	pageDelay, err := parseDurationEnv("SYNC_PAGE_DELAY", defaultPageDelay)
	if err != nil {
		return nil, e.Wrap("SYNC_PAGE_DELAY", err)
	}

	timeout, err := parseDurationEnv("SYNC_TIMEOUT", defaultTimeout)
	if err != nil {
		return nil, e.Wrap("SYNC_TIMEOUT", err)
	}

	maxAttempts, err := parseIntEnv("SYNC_MAX_ATTEMPTS", defaultMaxAttempts)
	if err != nil {
		return nil, e.Wrap("SYNC_MAX_ATTEMPTS", err)
	}

	return &SyncCfg{
		CronSpec:    getEnvOrDefault("SYNC_CRON", defaultCronSpec),
		PageSize:    pageSize,
		PageDelay:   pageDelay,
		Timeout:     timeout,
		MaxAttempts: maxAttempts,
		Ceiling:     defaultCeiling,
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultWorkers           = 4
		defaultMaxAttempts       = 3
	)

	brokerStr := os.Getenv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	brokers := strings.Split(brokerStr, ",")

	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	workers, err := parseIntEnv("WORKER_COUNT", defaultWorkers)
	if err != nil {
		return nil, e.Wrap("WORKER_COUNT", err)
	}

	maxAttempts, err := parseIntEnv("JOB_MAX_ATTEMPTS", defaultMaxAttempts)
	if err != nil {
		return nil, e.Wrap("JOB_MAX_ATTEMPTS", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             topic,
		GroupID:           getEnvOrDefault("KAFKA_GROUP_ID", "stockwatch-events"),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
		Workers:           workers,
		MaxAttempts:       maxAttempts,
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 10 * time.Second
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr          = "localhost:6379"
		defaultDB            = 0
		defaultMaxRetries    = 3
		defaultDialTimeout   = 5 * time.Second
		defaultReadTimeout   = 3 * time.Second
		defaultWriteTimeout  = 3 * time.Second
		defaultDedupLeaseTTL = time.Second
	)

	addr := getEnvOrDefault("REDIS_ADDR", defaultAddr)
	password := getEnv("REDIS_PASSWORD")
	user := getEnv("REDIS_USER")

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	leaseTTL, err := parseDurationEnv("DEDUP_LEASE_TTL", defaultDedupLeaseTTL)
	if err != nil {
		log.Errorf(err, "invalid DEDUP_LEASE_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:          addr,
		Password:      password,
		User:          user,
		DB:            db,
		MaxRetries:    maxRetries,
		DialTimeout:   dialTimeout,
		Timeout:       timeout,
		DedupLeaseTTL: leaseTTL,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func filterEmpty(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
