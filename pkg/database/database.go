package database

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	applog "blogmailer_backend/pkg/logger"
)

var DB *gorm.DB

func InitDB(dsn string) {
	var err error

	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}

	gormConfig := &gorm.Config{
		Logger:      logger.Default.LogMode(logger.Error),
		PrepareStmt: false,
	}

	DB, err = gorm.Open(postgres.New(pgConfig), gormConfig)
	if err != nil {
		applog.Log.Fatal("failed to connect to database", zap.Error(err))
	}

	sqlDB, err := DB.DB()
	if err != nil {
		applog.Log.Fatal("failed to get database instance", zap.Error(err))
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	applog.Log.Info("database connected")
}

func GetDB() *gorm.DB {
	return DB
}

// MigrateDatabase creates missing tables and applies column additions for
// the given models. Existing columns are never dropped or retyped.
func MigrateDatabase(db *gorm.DB, models ...interface{}) error {
	for _, model := range models {
		if !db.Migrator().HasTable(model) {
			if err := db.Migrator().CreateTable(model); err != nil {
				return err
			}
			applog.Log.Info("created table", zap.String("model", modelName(model)))
		} else {
			if err := db.Migrator().AutoMigrate(model); err != nil {
				return err
			}
		}
	}
	return nil
}

func modelName(model interface{}) string {
	if n, ok := model.(interface{ TableName() string }); ok {
		return n.TableName()
	}
	return "unknown"
}
