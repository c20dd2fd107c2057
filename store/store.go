package store

import (
	"context"
	"strings"

	"github.com/aisgo/posibel/errors"
	"github.com/aisgo/posibel/model"
	"github.com/aisgo/posibel/repository"

	"gorm.io/gorm"
)

/* ========================================================================
 * Entity Stores - 实体仓储
 * ========================================================================
 * 职责: 为每个实体实例化通用仓储，并提供少量实体专属查询
 * 受信任调用点（Identity 为 nil）:
 *   - UserRepository.GetByEmail: 登录时跨租户按邮箱查找
 *   - UserRepository.ExistsByEmail: 邮箱全局唯一性检查
 *   - 组织注册事务中创建 Organization 本身
 * ======================================================================== */

type (
	OrganizationRepository = repository.RepositoryImpl[model.Organization, model.OrganizationWhere, model.OrganizationRelation]
	ShopRepository         = repository.RepositoryImpl[model.Shop, model.ShopWhere, model.ShopRelation]
	RoleRepository         = repository.RepositoryImpl[model.Role, model.RoleWhere, model.RoleRelation]
	ProductGroupRepository = repository.RepositoryImpl[model.ProductGroup, model.ProductGroupWhere, model.ProductGroupRelation]
	ProductRepository      = repository.RepositoryImpl[model.Product, model.ProductWhere, model.ProductRelation]
	StockLevelRepository   = repository.RepositoryImpl[model.StockLevel, model.StockLevelWhere, model.StockLevelRelation]
	SaleRepository         = repository.RepositoryImpl[model.Sale, model.SaleWhere, model.SaleRelation]
	OrderlineRepository    = repository.RepositoryImpl[model.Orderline, model.OrderlineWhere, model.OrderlineRelation]
	TransactionRepository  = repository.RepositoryImpl[model.Transaction, model.TransactionWhere, model.TransactionRelation]
)

func NewOrganizationRepository(db *gorm.DB, opts ...repository.Option) *OrganizationRepository {
	return repository.NewRepository[model.Organization, model.OrganizationWhere](db, organizationRelations, opts...)
}

func NewShopRepository(db *gorm.DB, opts ...repository.Option) *ShopRepository {
	return repository.NewRepository[model.Shop, model.ShopWhere](db, shopRelations, opts...)
}

func NewRoleRepository(db *gorm.DB, opts ...repository.Option) *RoleRepository {
	return repository.NewRepository[model.Role, model.RoleWhere](db, roleRelations, opts...)
}

func NewProductGroupRepository(db *gorm.DB, opts ...repository.Option) *ProductGroupRepository {
	return repository.NewRepository[model.ProductGroup, model.ProductGroupWhere](db, productGroupRelations, opts...)
}

func NewProductRepository(db *gorm.DB, opts ...repository.Option) *ProductRepository {
	return repository.NewRepository[model.Product, model.ProductWhere](db, productRelations, opts...)
}

func NewStockLevelRepository(db *gorm.DB, opts ...repository.Option) *StockLevelRepository {
	return repository.NewRepository[model.StockLevel, model.StockLevelWhere](db, stockLevelRelations, opts...)
}

func NewSaleRepository(db *gorm.DB, opts ...repository.Option) *SaleRepository {
	return repository.NewRepository[model.Sale, model.SaleWhere](db, saleRelations, opts...)
}

func NewOrderlineRepository(db *gorm.DB, opts ...repository.Option) *OrderlineRepository {
	return repository.NewRepository[model.Orderline, model.OrderlineWhere](db, orderlineRelations, opts...)
}

func NewTransactionRepository(db *gorm.DB, opts ...repository.Option) *TransactionRepository {
	return repository.NewRepository[model.Transaction, model.TransactionWhere](db, transactionRelations, opts...)
}

// UserRepository 用户仓储
type UserRepository struct {
	*repository.RepositoryImpl[model.User, model.UserWhere, model.UserRelation]
}

func NewUserRepository(db *gorm.DB, opts ...repository.Option) *UserRepository {
	return &UserRepository{
		RepositoryImpl: repository.NewRepository[model.User, model.UserWhere](db, userRelations, opts...),
	}
}

// NormalizeEmail 邮箱统一小写并去除首尾空白
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// GetByEmail 跨租户按邮箱查找用户，并加载其组织与角色
// 受信任调用点：仅用于登录
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = NormalizeEmail(email)
	return r.GetOne(ctx, repository.SelectQuery[model.UserWhere, model.UserRelation]{
		Where: model.UserWhere{Email: &email},
		Joins: []repository.Join[model.UserRelation]{
			repository.InnerJoin(model.UserOrganization),
			repository.InnerJoin(model.UserRole),
		},
	})
}

// ExistsByEmail 邮箱是否已被任意租户的用户占用
// 受信任调用点：邮箱全局唯一
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	email = NormalizeEmail(email)
	user, err := r.GetOne(ctx, repository.SelectQuery[model.UserWhere, model.UserRelation]{
		Where: model.UserWhere{Email: &email},
	})
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// Stores 所有实体仓储
type Stores struct {
	Transactor    *repository.Transactor
	Organizations *OrganizationRepository
	Shops         *ShopRepository
	Roles         *RoleRepository
	Users         *UserRepository
	ProductGroups *ProductGroupRepository
	Products      *ProductRepository
	StockLevels   *StockLevelRepository
	Sales         *SaleRepository
	Orderlines    *OrderlineRepository
	Transactions  *TransactionRepository
}

// New 创建全部仓储
func New(db *gorm.DB, opts ...repository.Option) *Stores {
	return &Stores{
		Transactor:    repository.NewTransactor(db),
		Organizations: NewOrganizationRepository(db, opts...),
		Shops:         NewShopRepository(db, opts...),
		Roles:         NewRoleRepository(db, opts...),
		Users:         NewUserRepository(db, opts...),
		ProductGroups: NewProductGroupRepository(db, opts...),
		Products:      NewProductRepository(db, opts...),
		StockLevels:   NewStockLevelRepository(db, opts...),
		Sales:         NewSaleRepository(db, opts...),
		Orderlines:    NewOrderlineRepository(db, opts...),
		Transactions:  NewTransactionRepository(db, opts...),
	}
}

// Models 需要迁移的全部模型（按依赖顺序）
func Models() []any {
	return []any{
		&model.Organization{},
		&model.Role{},
		&model.User{},
		&model.Shop{},
		&model.ProductGroup{},
		&model.Product{},
		&model.StockLevel{},
		&model.Sale{},
		&model.Orderline{},
		&model.Transaction{},
	}
}

// AutoMigrate 创建或更新表结构
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, "auto migrate", err)
	}
	return nil
}
