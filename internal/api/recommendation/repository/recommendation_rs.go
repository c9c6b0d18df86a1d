package recommendationRepository

import (
	"context"
	"database/sql"
	"errors"

	"greeny/internal/api/recommendation"
	"greeny/internal/entity"
	contextPkg "greeny/pkg/context"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func (r *recommendationsRepository) Create(ctx context.Context, rec entity.Recommendation) error {
	return r.exec(ctx, queryCreateRecommendation, rec, "Create", false)
}

func (r *recommendationsRepository) GetByID(ctx context.Context, id string) (entity.Recommendation, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryGetRecommendationByID, map[string]interface{}{"id": id})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID named query preparation err")
		return entity.Recommendation{}, err
	}
	query = r.q.Rebind(query)

	var rec entity.Recommendation
	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&rec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Recommendation{}, recommendation.ErrRecommendationNotFound
		}

		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetByID query err")
		return entity.Recommendation{}, err
	}

	return rec, nil
}

func (r *recommendationsRepository) List(ctx context.Context, className string) ([]entity.Recommendation, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryListRecommendations, map[string]interface{}{"class_name": className})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("List named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	recs := []entity.Recommendation{}
	if err := r.q.SelectContext(ctx, &recs, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("List query err")
		return nil, err
	}

	return recs, nil
}

func (r *recommendationsRepository) Update(ctx context.Context, rec entity.Recommendation) error {
	return r.exec(ctx, queryUpdateRecommendation, rec, "Update", true)
}

func (r *recommendationsRepository) Delete(ctx context.Context, id string) error {
	return r.exec(ctx, queryDeleteRecommendation, map[string]interface{}{"id": id}, "Delete", true)
}

// exec runs a named statement; mustAffect turns zero affected rows into a
// not found error.
func (r *recommendationsRepository) exec(ctx context.Context, namedQuery string, arg interface{}, op string, mustAffect bool) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(namedQuery, arg)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error(op + " exec err")
		return err
	}

	if mustAffect {
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return recommendation.ErrRecommendationNotFound
		}
	}

	return nil
}

func (r *savedRepository) Create(ctx context.Context, saved entity.SavedRecommendation) error {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryCreateSaved, saved)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Create saved named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Create saved exec err")
		return err
	}

	return nil
}

func (r *savedRepository) ListByUser(ctx context.Context, userID string) ([]entity.SavedRecommendation, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryListSavedByUser, map[string]interface{}{"user_id": userID})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByUser named query preparation err")
		return nil, err
	}
	query = r.q.Rebind(query)

	saved := []entity.SavedRecommendation{}
	if err := r.q.SelectContext(ctx, &saved, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ListByUser query err")
		return nil, err
	}

	return saved, nil
}
