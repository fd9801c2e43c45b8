package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ApplicationMetrics tracks domain activity
type ApplicationMetrics struct {
	PuffsLogged          *prometheus.CounterVec
	CigarettesLogged     prometheus.Counter
	PostsCreated         *prometheus.CounterVec
	CommentsCreated      prometheus.Counter
	LikesToggled         *prometheus.CounterVec
	FriendRequests       *prometheus.CounterVec
	FollowsTotal         *prometheus.CounterVec
	MessagesSent         prometheus.Counter
	NotificationsCreated *prometheus.CounterVec
	StrainReviews        prometheus.Counter
	ImageUploads         *prometheus.CounterVec
	FeedBuildDuration    prometheus.Histogram
	SignUps              *prometheus.CounterVec
}

var (
	appInstance *ApplicationMetrics
	appOnce     sync.Once
)

// App returns the global application metrics, registering them on first use
func App() *ApplicationMetrics {
	appOnce.Do(func() {
		appInstance = &ApplicationMetrics{
			PuffsLogged: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "puffs_logged_total",
					Help:      "Sessions logged by consumption method",
				},
				[]string{"method"},
			),
			CigarettesLogged: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "cigarettes_logged_total",
					Help:      "Sum of quantities across logged sessions",
				},
			),
			PostsCreated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "posts_created_total",
					Help:      "Posts created by type",
				},
				[]string{"type"},
			),
			CommentsCreated: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "comments_created_total",
					Help:      "Comments created",
				},
			),
			LikesToggled: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "likes_toggled_total",
					Help:      "Like toggles by target and action",
				},
				[]string{"target", "action"},
			),
			FriendRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "friend_requests_total",
					Help:      "Friend request transitions",
				},
				[]string{"action"},
			),
			FollowsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "follows_total",
					Help:      "Follow and unfollow actions",
				},
				[]string{"action"},
			),
			MessagesSent: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "messages_sent_total",
					Help:      "Direct messages sent",
				},
			),
			NotificationsCreated: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "notifications_created_total",
					Help:      "Notifications created by type",
				},
				[]string{"type"},
			),
			StrainReviews: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "strain_reviews_total",
					Help:      "Strain reviews created or updated",
				},
			),
			ImageUploads: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "image_uploads_total",
					Help:      "Image uploads by outcome",
				},
				[]string{"status"},
			),
			FeedBuildDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Name:      "feed_build_duration_seconds",
					Help:      "Time to assemble a feed page",
					Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
				},
			),
			SignUps: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Name:      "signups_total",
					Help:      "Accounts created by provider",
				},
				[]string{"provider"},
			),
		}
	})
	return appInstance
}
