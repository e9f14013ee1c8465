package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rakibalmuqtadir286-byte/bijoy313/internal/utils"
)

type AuthHandler struct {
	ConfigCreds struct {
		AdminId       string
		AdminUsername string
		AdminPassword string
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

func (a *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.JSONError(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if a.ConfigCreds.AdminPassword != req.Password || a.ConfigCreds.AdminUsername != req.Username {
		utils.JSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := utils.GenerateJWT(a.ConfigCreds.AdminId)
	if err != nil {
		utils.JSONError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(LoginResponse{Token: token})
}
