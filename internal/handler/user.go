package handler

import (
	"encoding/json"
	"net/http"

	"chatsphere/backend/internal/model"
	"chatsphere/backend/internal/pkg/auth"
	"chatsphere/backend/internal/pkg/httputils"
	"chatsphere/backend/internal/service"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	userService  service.UserService
	mediaService *service.MediaService
}

// NewUserHandler создает новый экземпляр UserHandler. Media may be nil when S3
// is not configured; the picture endpoint then responds 503.
func NewUserHandler(userService service.UserService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{userService: userService, mediaService: mediaService}
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/auth/register", h.registerUser).Methods("POST", "OPTIONS")
	router.HandleFunc("/auth/login", h.loginUser).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/user/profile", h.getProfile).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/user/picture", h.uploadPicture).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/user/search/{prompt}", h.searchUser).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/user/{id}", h.getUser).Methods("GET", "OPTIONS")
}

type TokenResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DisplayName     string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary Register
// @Description Register an account
// @ID register
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} TokenResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Param registerData body RegisterRequest true "Register data"
// @Router /auth/register [post]
func (h *UserHandler) registerUser(w http.ResponseWriter, r *http.Request) {
	var request RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	r.Body.Close()

	if request.Username == "" || request.Email == "" || request.Password == "" {
		httputils.ResponseError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	if request.Password != request.ConfirmPassword {
		httputils.ResponseError(w, http.StatusBadRequest, "Passwords do not match")
		return
	}

	exists, err := h.userService.UsernameExists(r.Context(), request.Username)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to check username availability")
		return
	}
	if exists {
		httputils.ResponseError(w, http.StatusConflict, "Username is already taken")
		return
	}

	exists, err = h.userService.EmailExists(r.Context(), request.Email)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to check email availability")
		return
	}
	if exists {
		httputils.ResponseError(w, http.StatusConflict, "Email is already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := &model.User{
		Username:    request.Username,
		Email:       request.Email,
		Password:    string(hash),
		DisplayName: request.DisplayName,
	}
	user.EnsureDisplayName()

	if err := h.userService.CreateUser(r.Context(), user); err != nil {
		respondDomainError(w, err)
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	httputils.ResponseJSON(w, http.StatusCreated, TokenResponse{
		Token: token,
	})
}

// @Summary Login
// @Description Login with email and password
// @ID login
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} TokenResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Param loginData body LoginRequest true "Login data"
// @Router /auth/login [post]
func (h *UserHandler) loginUser(w http.ResponseWriter, r *http.Request) {
	var request LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	r.Body.Close()

	user, err := h.userService.GetUserByEmail(r.Context(), request.Email)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(request.Password)); err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, TokenResponse{
		Token: token,
	})
}

// @Summary Get profile
// @Description Get the authenticated user's profile
// @ID get-profile
// @Tags user
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} model.User
// @Failure 401 {object} response.ErrorResponse
// @Router /api/user/profile [get]
func (h *UserHandler) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	user.SanitizePassword()
	httputils.ResponseJSON(w, http.StatusOK, user)
}

// @Summary Get user
// @Description Get user by id
// @ID get-user
// @Tags user
// @Produce json
// @Success 200 {object} model.User
// @Failure 404 {object} response.ErrorResponse
// @Failure 500 {object} response.ErrorResponse
// @Param id path int true "User ID"
// @Router /api/user/{id} [get]
func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(r, "id")
	if !ok {
		httputils.ResponseError(w, http.StatusBadRequest, "Failed to parse user ID")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		httputils.ResponseError(w, http.StatusNotFound, "No such user")
		return
	}

	user.SanitizePassword()
	httputils.ResponseJSON(w, http.StatusOK, user)
}

// @Summary Search users
// @Description Search users by username
// @ID search-user
// @Tags user
// @Produce json
// @Success 200 {object} []model.User
// @Failure 404 {object} response.ErrorResponse
// @Param prompt path string true "Search Prompt"
// @Router /api/user/search/{prompt} [get]
func (h *UserHandler) searchUser(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	prompt := vars["prompt"]

	users, err := h.userService.SearchUsers(r.Context(), prompt)
	if err != nil {
		httputils.ResponseError(w, http.StatusNotFound, "failed to search for users")
		return
	}

	for _, user := range users {
		user.SanitizePassword()
	}

	httputils.ResponseJSON(w, http.StatusOK, users)
}

// @Summary Upload profile picture
// @Description Upload a profile picture for the authenticated user
// @ID upload-picture
// @Tags user
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Param picture formData file true "Picture"
// @Success 200 {object} model.FileMetadata
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Router /api/user/picture [post]
func (h *UserHandler) uploadPicture(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromRequest(r)
	if err != nil {
		httputils.ResponseError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	if h.mediaService == nil {
		httputils.ResponseError(w, http.StatusServiceUnavailable, "media storage is not configured")
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		httputils.ResponseError(w, http.StatusBadRequest, "picture file is required")
		return
	}
	defer file.Close()

	meta, err := h.mediaService.UploadProfilePicture(
		r.Context(),
		userID,
		header.Filename,
		header.Header.Get("Content-Type"),
		header.Size,
		file,
	)
	if err != nil {
		httputils.ResponseError(w, http.StatusInternalServerError, "failed to upload picture")
		return
	}

	user, err := h.userService.GetUserByID(r.Context(), userID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	user.ProfilePictureKey = meta.S3Key
	if err := h.userService.UpdateUser(r.Context(), user); err != nil {
		respondDomainError(w, err)
		return
	}

	httputils.ResponseJSON(w, http.StatusOK, meta)
}
