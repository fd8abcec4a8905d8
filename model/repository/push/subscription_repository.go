package push

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	entity "catalog.GO/model/entity"
)

type SubscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Migrate creates the subscription table.
func (r *SubscriptionRepository) Migrate() error {
	return r.db.AutoMigrate(&entity.PushSubscription{})
}

// Save stores a subscription and returns the stored row. Re-subscribing the
// same endpoint replaces its keys and keeps its original ID.
func (r *SubscriptionRepository) Save(endpoint string, keys entity.PushSubscriptionKeys) (*entity.PushSubscription, error) {
	sub := &entity.PushSubscription{
		ID:       uuid.New().String(),
		Endpoint: endpoint,
		Keys:     datatypes.NewJSONType(keys),
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"subscription_keys"}),
	}).Create(sub).Error
	if err != nil {
		return nil, err
	}
	var stored entity.PushSubscription
	if err := r.db.Where("endpoint = ?", endpoint).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

// List returns every stored subscription, oldest first.
func (r *SubscriptionRepository) List() ([]entity.PushSubscription, error) {
	var subs []entity.PushSubscription
	if err := r.db.Order("created_at, id").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

// DeleteByEndpoint drops a subscription the push service reported as gone.
func (r *SubscriptionRepository) DeleteByEndpoint(endpoint string) error {
	return r.db.Where("endpoint = ?", endpoint).Delete(&entity.PushSubscription{}).Error
}
