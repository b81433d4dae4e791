package untis

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/diegoclair/untis-cancellation-bot/internal/domain"
	"github.com/diegoclair/untis-cancellation-bot/internal/domain/entity"
)

const logoutTimeout = 5 * time.Second

type rawElement struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LongName string `json:"longname"`
}

// rawLesson is a getTimetable period. Date is YYYYMMDD, times are HHMM.
type rawLesson struct {
	ID        int          `json:"id"`
	Date      int          `json:"date"`
	StartTime int          `json:"startTime"`
	EndTime   int          `json:"endTime"`
	Code      string       `json:"code"`
	Subjects  []rawElement `json:"su"`
	Teachers  []rawElement `json:"te"`
}

// Fetch returns the user's lessons for the current week. Any login, transport
// or decoding failure is reported as domain.ErrFetch.
func (c *Client) Fetch(ctx context.Context, user *entity.User) (entity.Snapshot, error) {
	sess, err := c.login(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%w: login: %v", domain.ErrFetch, err)
	}
	defer func() {
		logoutCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), logoutTimeout)
		defer cancel()
		c.logout(logoutCtx, sess)
	}()

	start, end := domain.WeekBounds(c.now().In(c.loc))
	lessons, err := c.timetable(ctx, sess, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: timetable: %v", domain.ErrFetch, err)
	}

	return normalizeLessons(lessons, c.log), nil
}

// CheckCredentials reports whether the user can log in and out. It never
// returns an error.
func (c *Client) CheckCredentials(ctx context.Context, user *entity.User) bool {
	sess, err := c.login(ctx, user)
	if err != nil {
		c.log.Debug("credential check failed", zap.String("username", user.Username()), zap.Error(err))
		return false
	}
	c.logout(ctx, sess)
	return true
}

func (c *Client) timetable(ctx context.Context, sess *session, start, end time.Time) ([]rawLesson, error) {
	params := map[string]any{
		"options": map[string]any{
			"element": map[string]int{
				"id":   sess.personID,
				"type": sess.personType,
			},
			"startDate":     untisDate(start),
			"endDate":       untisDate(end),
			"showSubstText": true,
			"showInfo":      true,
			"subjectFields": []string{"id", "name", "longname"},
			"teacherFields": []string{"id", "name", "longname"},
		},
	}

	var lessons []rawLesson
	if _, err := c.call(ctx, rpcEndpoint(sess.server, sess.school), "getTimetable", params, sess.cookies(), &lessons); err != nil {
		return nil, err
	}
	return lessons, nil
}
