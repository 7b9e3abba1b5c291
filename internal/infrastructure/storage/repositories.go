package storage

import (
	"context"
	"errors"

	"github.com/sparradar/backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepo persists user accounts
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo creates a user repository
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create inserts a new user. A duplicate email maps to ErrEmailTaken.
func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	model := userToModel(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailTaken
		}
		return err
	}
	user.ID = model.ID
	return nil
}

// FindByEmail looks a user up by email
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var model UserModel
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return modelToUser(&model), nil
}

// Update persists changed user fields
func (r *UserRepo) Update(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(userToModel(user)).Error
}

// MarketRepo persists market records
type MarketRepo struct {
	db *gorm.DB
}

// NewMarketRepo creates a market repository
func NewMarketRepo(db *gorm.DB) *MarketRepo {
	return &MarketRepo{db: db}
}

// Save upserts a market by its external market ID
func (r *MarketRepo) Save(ctx context.Context, market *domain.Market) (*domain.Market, error) {
	model := MarketModel{
		MarketID:  market.MarketID,
		Franchise: market.Franchise,
		Name:      market.Name,
		Address:   market.Address,
		ZipCode:   market.ZipCode,
		City:      market.City,
	}

	var existing MarketModel
	err := r.db.WithContext(ctx).Where("market_id = ?", market.MarketID).First(&existing).Error
	switch {
	case err == nil:
		model.ID = existing.ID
		if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	market.ID = model.ID
	return market, nil
}

// List returns one page of markets ordered by name
func (r *MarketRepo) List(ctx context.Context, page, limit int) ([]domain.Market, *domain.PaginationMeta, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&MarketModel{}).Count(&total).Error; err != nil {
		return nil, nil, err
	}

	var models []MarketModel
	err := r.db.WithContext(ctx).
		Scopes(Paginate(page, limit)).
		Order("name").
		Find(&models).Error
	if err != nil {
		return nil, nil, err
	}

	markets := make([]domain.Market, 0, len(models))
	for _, m := range models {
		markets = append(markets, domain.Market{
			ID:        m.ID,
			MarketID:  m.MarketID,
			Franchise: m.Franchise,
			Name:      m.Name,
			Address:   m.Address,
			ZipCode:   m.ZipCode,
			City:      m.City,
		})
	}

	return markets, BuildMeta(total, page, limit), nil
}

// ProductRepo persists catalog products of record
type ProductRepo struct {
	db *gorm.DB
}

// NewProductRepo creates a product repository
func NewProductRepo(db *gorm.DB) *ProductRepo {
	return &ProductRepo{db: db}
}

// SaveBatch replaces the stored products of a market with the given
// catalog entries. Returns the number of inserted rows.
func (r *ProductRepo) SaveBatch(ctx context.Context, marketID uint, products []domain.CatalogEntry) (int, error) {
	models := make([]ProductModel, 0, len(products))
	for _, p := range products {
		models = append(models, ProductModel{
			Title:       p.Title,
			ProductID:   p.ProductID,
			Grammage:    p.Grammage,
			RetailPrice: p.RetailPrice,
			MarketRef:   marketID,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("market_ref = ?", marketID).Delete(&ProductModel{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.CreateInBatches(models, 100).Error
	})
	if err != nil {
		return 0, err
	}

	return len(models), nil
}

func userToModel(user *domain.User) *UserModel {
	return &UserModel{
		ID:          user.ID,
		Gender:      user.Gender,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Email:       user.Email,
		ZipCode:     user.ZipCode,
		City:        user.City,
		Address:     user.Address,
		Password:    user.Password,
		LastLoginAt: user.LastLoginAt,
	}
}

func modelToUser(model *UserModel) *domain.User {
	return &domain.User{
		ID:          model.ID,
		Gender:      model.Gender,
		FirstName:   model.FirstName,
		LastName:    model.LastName,
		Email:       model.Email,
		ZipCode:     model.ZipCode,
		City:        model.City,
		Address:     model.Address,
		Password:    model.Password,
		LastLoginAt: model.LastLoginAt,
	}
}
