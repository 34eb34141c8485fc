package implementation

import (
	"context"
	"errors"

	"swappay-be/internal/entity"
	"swappay-be/internal/mapper"
	"swappay-be/internal/model"
	"swappay-be/internal/repository/contract"
	"swappay-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChatRoomRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewChatRoomRepository(db *gorm.DB) contract.ChatRoomRepository {
	return &ChatRoomRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *ChatRoomRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChatRoomRepositoryImpl) Create(ctx context.Context, room *entity.ChatRoom) error {
	if room.Id == uuid.Nil {
		room.Id = uuid.New()
	}
	m := r.mapper.RoomToModel(room)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*room = *r.mapper.RoomToEntity(m)
	return nil
}

func (r *ChatRoomRepositoryImpl) Update(ctx context.Context, room *entity.ChatRoom) error {
	m := r.mapper.RoomToModel(room)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*room = *r.mapper.RoomToEntity(m)
	return nil
}

// Delete removes the room row only; callers delete children first.
func (r *ChatRoomRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ChatRoom{}).Error
}

func (r *ChatRoomRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatRoom, error) {
	var m model.ChatRoom
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.RoomToEntity(&m), nil
}

func (r *ChatRoomRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatRoom, error) {
	var models []*model.ChatRoom
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.RoomsToEntities(models), nil
}
