package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"

	"github.com/puffbuddy/backend/internal/storage"
	"github.com/puffbuddy/backend/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (suite *HandlersTestSuite) uploadImage(user *testUser, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(suite.T(), err)
	_, err = part.Write(data)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), writer.Close())

	req, err := http.NewRequest(http.MethodPost, "/api/v1/uploads/image", body)
	require.NoError(suite.T(), err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+user.token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *HandlersTestSuite) TestGenerateUploadURL() {
	t := suite.T()

	for _, path := range []string{"/uploads/url", "/profiles/upload-url", "/puffs/upload-url"} {
		w := suite.request(http.MethodPost, path, suite.alice, nil)
		suite.requireStatus(w, http.StatusOK)

		var upload storage.PresignedUpload
		suite.decode(w, &upload)
		assert.NotEmpty(t, upload.UploadURL, path)
		assert.Equal(t, suite.alice.ID, storage.KeyOwner(upload.Key), path)
	}
}

func (suite *HandlersTestSuite) TestGenerateUploadURLRejectsNonImage() {
	w := suite.request(http.MethodPost, "/uploads/url", suite.alice, map[string]string{"content_type": "application/pdf"})
	suite.requireStatus(w, http.StatusUnprocessableEntity)
}

func (suite *HandlersTestSuite) TestGenerateUploadURLWithoutStorage() {
	suite.handlers.SetImageStore(nil)

	w := suite.request(http.MethodPost, "/uploads/url", suite.alice, nil)
	suite.requireStatus(w, http.StatusServiceUnavailable)
}

func (suite *HandlersTestSuite) TestUploadImage() {
	t := suite.T()

	w := suite.uploadImage(suite.alice, "sesh.png", "image/png", []byte("\x89PNG fake image bytes"))
	suite.requireStatus(w, http.StatusCreated)

	var result storage.UploadResult
	suite.decode(w, &result)
	assert.Equal(t, suite.alice.ID, storage.KeyOwner(result.Key))
	assert.Equal(t, suite.images.URL(result.Key), result.URL)
	assert.EqualValues(t, len("\x89PNG fake image bytes"), result.Size)

	// The returned storage id can be used right away
	w = suite.request(http.MethodPost, "/posts", suite.alice, map[string]interface{}{
		"content":  "fresh upload",
		"image_id": result.Key,
	})
	suite.requireStatus(w, http.StatusCreated)
}

func (suite *HandlersTestSuite) TestUploadImageRejectsNonImage() {
	w := suite.uploadImage(suite.alice, "notes.txt", "text/plain", []byte("hello"))
	suite.requireStatus(w, http.StatusUnprocessableEntity)
}

func (suite *HandlersTestSuite) TestUploadImageTooLarge() {
	w := suite.uploadImage(suite.alice, "huge.jpg", "image/jpeg", make([]byte, util.MaxImageBytes+1))
	suite.requireStatus(w, http.StatusRequestEntityTooLarge)
}
