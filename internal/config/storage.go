package config

// StorageBackend выбирает реализацию key-value хранилища для квоты и памяти.
type StorageBackend string

const (
	StorageFile     StorageBackend = "file"
	StorageRedis    StorageBackend = "redis"
	StoragePostgres StorageBackend = "postgres"
)

type Storage struct {
	Backend StorageBackend `env:"STORAGE_BACKEND" envDefault:"file"`
	FileDir string         `env:"STORAGE_FILE_DIR" envDefault:"./data"`
}
