package models

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepo interface {
	RecordBookingEvent(ctx context.Context, event *BookingEvent) error
	DailySummary(ctx context.Context, from, to time.Time) ([]DailyBookingStat, error)
	TotalsByStatus(ctx context.Context) ([]StatusTotal, error)
}

func (mr *MongodbRepo) RecordBookingEvent(ctx context.Context, event *BookingEvent) error {
	if event == nil {
		return fmt.Errorf("nil booking event")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	coll := mr.mongodbClient.Database(DBName).Collection(BookingEventsCollection)
	if _, err := coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("failed to record booking event: %v", err)
	}
	return nil
}

// DailySummary groups confirmed bookings by calendar day between from and to.
func (mr *MongodbRepo) DailySummary(ctx context.Context, from, to time.Time) ([]DailyBookingStat, error) {
	if !from.Before(to) {
		return nil, fmt.Errorf("invalid report range")
	}

	coll := mr.mongodbClient.Database(DBName).Collection(BookingEventsCollection)

	pipeline := bson.A{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "created_at", Value: bson.D{
				{Key: "$gte", Value: from},
				{Key: "$lt", Value: to},
			}},
			{Key: "status", Value: "confirmed"},
		}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$created_at"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "revenue", Value: bson.D{{Key: "$sum", Value: "$amount"}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline, options.Aggregate())
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily summary: %v", err)
	}
	defer cursor.Close(ctx)

	var stats []DailyBookingStat
	if err := cursor.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("failed to decode daily summary: %v", err)
	}

	return stats, nil
}

func (mr *MongodbRepo) TotalsByStatus(ctx context.Context) ([]StatusTotal, error) {
	coll := mr.mongodbClient.Database(DBName).Collection(BookingEventsCollection)

	pipeline := bson.A{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status totals: %v", err)
	}
	defer cursor.Close(ctx)

	var totals []StatusTotal
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, fmt.Errorf("failed to decode status totals: %v", err)
	}

	return totals, nil
}
