package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/puffbuddy/backend/internal/dto"
	"github.com/puffbuddy/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type feedResponse struct {
	Posts []dto.PostView `json:"posts"`
	Count int            `json:"count"`
}

func (suite *HandlersTestSuite) getFeed(user *testUser) feedResponse {
	w := suite.request(http.MethodGet, "/feed", user, nil)
	suite.requireStatus(w, http.StatusOK)
	var resp feedResponse
	suite.decode(w, &resp)
	return resp
}

func (suite *HandlersTestSuite) TestCreatePost() {
	t := suite.T()

	w := suite.request(http.MethodPost, "/posts", suite.alice, map[string]interface{}{
		"content": "  first sesh of the day  ",
	})
	suite.requireStatus(w, http.StatusCreated)

	var resp struct {
		Post dto.PostView `json:"post"`
	}
	suite.decode(w, &resp)
	assert.Equal(t, "first sesh of the day", resp.Post.Content)
	assert.Equal(t, models.PostTypeText, resp.Post.Type)
	assert.Nil(t, resp.Post.ImageURL)
}

func (suite *HandlersTestSuite) TestCreatePhotoPost() {
	t := suite.T()
	key := imageKeyFor(suite.alice)

	w := suite.request(http.MethodPost, "/posts", suite.alice, map[string]interface{}{
		"content":  "look at this",
		"image_id": key,
	})
	suite.requireStatus(w, http.StatusCreated)

	var resp struct {
		Post dto.PostView `json:"post"`
	}
	suite.decode(w, &resp)
	assert.Equal(t, models.PostTypePhoto, resp.Post.Type)
	if assert.NotNil(t, resp.Post.ImageURL) {
		assert.Equal(t, suite.images.URL(key), *resp.Post.ImageURL)
	}
}

func (suite *HandlersTestSuite) TestCreatePostValidation() {
	w := suite.request(http.MethodPost, "/posts", suite.alice, map[string]interface{}{"content": "   "})
	suite.requireStatus(w, http.StatusUnprocessableEntity)

	w = suite.request(http.MethodPost, "/posts", suite.alice, map[string]interface{}{
		"content": strings.Repeat("🌿", MaxContentLength+1),
	})
	suite.requireStatus(w, http.StatusUnprocessableEntity)

	// Exactly the limit counts characters, not bytes
	w = suite.request(http.MethodPost, "/posts", suite.alice, map[string]interface{}{
		"content": strings.Repeat("🌿", MaxContentLength),
	})
	suite.requireStatus(w, http.StatusCreated)

	w = suite.request(http.MethodPost, "/posts", suite.alice, map[string]interface{}{
		"content":  "stolen pic",
		"image_id": imageKeyFor(suite.bob),
	})
	suite.requireStatus(w, http.StatusUnprocessableEntity)
}

func (suite *HandlersTestSuite) TestFeedIncludesFriendsAndFollowees() {
	t := suite.T()
	suite.makeFriends(suite.alice, suite.bob)
	require.NoError(t, suite.db.Create(&models.Follow{FollowerID: suite.alice.ID, FollowingID: suite.carol.ID}).Error)
	stranger := suite.createUser("dave@example.com", "Dave")

	suite.createPost(suite.alice, "mine")
	suite.createPost(suite.bob, "friend")
	suite.createPost(suite.carol, "followee")
	suite.createPost(stranger, "stranger")

	feed := suite.getFeed(suite.alice)
	require.Equal(t, 3, feed.Count)

	contents := make([]string, 0, len(feed.Posts))
	for _, p := range feed.Posts {
		contents = append(contents, p.Content)
		assert.NotNil(t, p.Profile)
		assert.NotNil(t, p.Comments)
	}
	assert.Equal(t, []string{"followee", "friend", "mine"}, contents)

	// Carol only sees her own post
	feed = suite.getFeed(suite.carol)
	require.Equal(t, 1, feed.Count)
	assert.Equal(t, "followee", feed.Posts[0].Content)
}

func (suite *HandlersTestSuite) TestFeedReflectsNewPostAfterCache() {
	t := suite.T()
	assert.Equal(t, 0, suite.getFeed(suite.alice).Count)

	w := suite.request(http.MethodPost, "/posts", suite.alice, map[string]interface{}{"content": "hello"})
	suite.requireStatus(w, http.StatusCreated)

	assert.Equal(t, 1, suite.getFeed(suite.alice).Count)
}

func (suite *HandlersTestSuite) TestLikePostToggles() {
	t := suite.T()
	post := suite.createPost(suite.bob, "like me")

	w := suite.request(http.MethodPost, "/posts/"+post.ID+"/like", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(t, `{"liked":true,"likes":1}`, w.Body.String())
	assert.EqualValues(t, 1, suite.countNotifications(suite.bob.ID, models.NotificationLike))

	feed := suite.getFeed(suite.bob)
	require.Equal(t, 1, feed.Count)
	assert.Equal(t, 1, feed.Posts[0].LikeCount)

	w = suite.request(http.MethodPost, "/posts/"+post.ID+"/like", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(t, `{"liked":false,"likes":0}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestLikeOwnPostDoesNotNotify() {
	post := suite.createPost(suite.alice, "self love")

	w := suite.request(http.MethodPost, "/posts/"+post.ID+"/like", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.Zero(suite.T(), suite.countNotifications(suite.alice.ID, models.NotificationLike))
}

func (suite *HandlersTestSuite) TestRetweetWithComment() {
	t := suite.T()
	post := suite.createPost(suite.bob, "retweet me")

	w := suite.request(http.MethodPost, "/posts/"+post.ID+"/retweet", suite.alice, map[string]string{"comment": "so true"})
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(t, `{"retweeted":true,"retweets":1}`, w.Body.String())

	var notification models.Notification
	require.NoError(t, suite.db.Where("user_id = ? AND type = ?", suite.bob.ID, models.NotificationRetweet).First(&notification).Error)
	assert.Equal(t, `retweeted your post: "so true"`, notification.Message)

	w = suite.request(http.MethodPost, "/posts/"+post.ID+"/retweet", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(t, `{"retweeted":false,"retweets":0}`, w.Body.String())
}

// retweetStreamed posts body without a Content-Length, as a chunked client does
func (suite *HandlersTestSuite) retweetStreamed(user *testUser, postID, body string) *httptest.ResponseRecorder {
	req, err := http.NewRequest(http.MethodPost, "/api/v1/posts/"+postID+"/retweet", io.MultiReader(strings.NewReader(body)))
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(0), req.ContentLength)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+user.token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestRetweetCommentWithoutContentLength() {
	t := suite.T()
	post := suite.createPost(suite.bob, "stream me")

	w := suite.retweetStreamed(suite.alice, post.ID, `{"comment":"chunked"}`)
	suite.requireStatus(w, http.StatusOK)

	var notification models.Notification
	require.NoError(t, suite.db.Where("user_id = ? AND type = ?", suite.bob.ID, models.NotificationRetweet).First(&notification).Error)
	assert.Equal(t, `retweeted your post: "chunked"`, notification.Message)

	// An empty stream is a retweet without comment
	w = suite.retweetStreamed(suite.carol, post.ID, "")
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(t, `{"retweeted":true,"retweets":2}`, w.Body.String())
}

func (suite *HandlersTestSuite) TestCommentsAndCommentLikes() {
	t := suite.T()
	suite.makeFriends(suite.alice, suite.bob)
	post := suite.createPost(suite.bob, "discuss")

	w := suite.request(http.MethodPost, "/posts/"+post.ID+"/comments", suite.alice, map[string]string{"content": "nice"})
	suite.requireStatus(w, http.StatusCreated)
	var created struct {
		Comment dto.CommentView `json:"comment"`
	}
	suite.decode(w, &created)
	assert.Equal(t, "nice", created.Comment.Content)

	var notification models.Notification
	require.NoError(t, suite.db.Where("user_id = ? AND type = ?", suite.bob.ID, models.NotificationComment).First(&notification).Error)
	assert.Equal(t, `commented on your post: "nice"`, notification.Message)

	w = suite.request(http.MethodPost, "/comments/"+created.Comment.ID+"/like", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)
	assert.JSONEq(t, `{"liked":true,"likes":1}`, w.Body.String())

	feed := suite.getFeed(suite.bob)
	require.Equal(t, 1, feed.Count)
	assert.Equal(t, 1, feed.Posts[0].CommentCount)
	require.Len(t, feed.Posts[0].Comments, 1)
	assert.True(t, feed.Posts[0].Comments[0].IsLiked)
	assert.Equal(t, 1, feed.Posts[0].Comments[0].LikeCount)
}

func (suite *HandlersTestSuite) TestDeletePostCascades() {
	t := suite.T()
	key := imageKeyFor(suite.alice)
	post := &models.Post{UserID: suite.alice.ID, Content: "temp", Type: models.PostTypePhoto, ImageID: &key}
	require.NoError(t, suite.db.Create(post).Error)

	w := suite.request(http.MethodPost, "/posts/"+post.ID+"/comments", suite.bob, map[string]string{"content": "hm"})
	suite.requireStatus(w, http.StatusCreated)
	w = suite.request(http.MethodPost, "/posts/"+post.ID+"/like", suite.bob, nil)
	suite.requireStatus(w, http.StatusOK)

	w = suite.request(http.MethodDelete, "/posts/"+post.ID, suite.bob, nil)
	suite.requireStatus(w, http.StatusForbidden)

	w = suite.request(http.MethodDelete, "/posts/"+post.ID, suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	for _, model := range []interface{}{&models.Post{}, &models.Comment{}, &models.PostLike{}, &models.Notification{}} {
		var count int64
		require.NoError(t, suite.db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T rows left", model)
	}
	assert.Equal(t, []string{key}, suite.images.deletedKeys())
}

func (suite *HandlersTestSuite) TestGetUserPosts() {
	t := suite.T()
	suite.createPost(suite.bob, "one")
	suite.createPost(suite.bob, "two")
	suite.createPost(suite.alice, "other")

	w := suite.request(http.MethodGet, "/users/"+suite.bob.ID+"/posts", suite.alice, nil)
	suite.requireStatus(w, http.StatusOK)

	var resp feedResponse
	suite.decode(w, &resp)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "two", resp.Posts[0].Content)
	assert.Nil(t, resp.Posts[0].Comments)
}
