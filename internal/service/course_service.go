package service

import (
	"context"
	"encoding/json"
	"lms_console_backend/internal/model"
	"lms_console_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const courseListCacheKey = "lms:courses:all"

// CourseService reads the course catalog through a Redis cache-aside layer.
// A nil Redis client disables caching.
type CourseService struct {
	Store CourseStore
	Redis *redis.Client
	TTL   time.Duration
}

func NewCourseService(store CourseStore, rdb *redis.Client, ttl time.Duration) *CourseService {
	return &CourseService{Store: store, Redis: rdb, TTL: ttl}
}

func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	if s.Redis != nil {
		raw, err := s.Redis.Get(ctx, courseListCacheKey).Bytes()
		if err == nil {
			var courses []model.Course
			if err := json.Unmarshal(raw, &courses); err == nil {
				return courses, nil
			}
			logger.Log.Warn("Discarding corrupt course cache entry")
		} else if err != redis.Nil {
			logger.Log.Warn("Course cache read failed", zap.Error(err))
		}
	}

	courses, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(courses); err == nil {
			if err := s.Redis.Set(ctx, courseListCacheKey, data, s.TTL).Err(); err != nil {
				logger.Log.Warn("Course cache write failed", zap.Error(err))
			}
		}
	}
	return courses, nil
}

// Invalidate 课程变更后清除缓存
func (s *CourseService) Invalidate(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, courseListCacheKey).Err(); err != nil {
		logger.Log.Warn("Course cache invalidation failed", zap.Error(err))
	}
}

func CourseTitles(courses []model.Course) map[uint]string {
	titles := make(map[uint]string, len(courses))
	for _, c := range courses {
		titles[c.ID] = c.Title
	}
	return titles
}
