package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/polyfall-game/polyfall/db/user"
	"github.com/polyfall-game/polyfall/server/log"
)

// userCreateHandler creates a user, adding it to the database.
func userCreateHandler(userDao UserDao, log log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := user.User{
			Username: r.FormValue("username"),
			Password: r.FormValue("password_confirm"),
		}
		ctx := r.Context()
		if err := userDao.Create(ctx, u); err != nil {
			writeInternalError(fmt.Errorf("creating user: %v", err), log, w)
		}
	}
}

// userLoginHandler signs a user in, writing the session token to the response.
func userLoginHandler(userDao UserDao, tokenizer Tokenizer, log log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := user.User{
			Username: r.FormValue("username"),
			Password: r.FormValue("password"),
		}
		ctx := r.Context()
		u2, err := userDao.Read(ctx, u)
		switch {
		case errors.Is(err, user.ErrIncorrectLogin):
			httpError(w, http.StatusUnauthorized)
			return
		case err != nil:
			writeInternalError(fmt.Errorf("signing user in: %v", err), log, w)
			return
		}
		token, err := tokenizer.Create(u2.Username, u2.Points)
		if err != nil {
			writeInternalError(fmt.Errorf("creating session token: %v", err), log, w)
			return
		}
		if _, err := w.Write([]byte(token)); err != nil {
			writeInternalError(fmt.Errorf("writing session token: %w", err), log, w)
		}
	}
}

// userLobbyConnectHandler adds the user to the lobby, upgrading the connection to a websocket.
func userLobbyConnectHandler(tokenizer Tokenizer, lobby Lobby, log log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString := r.FormValue("access_token")
		username, err := tokenizer.ReadUsername(tokenString)
		if err != nil {
			log.Printf("reading username from access token: %v", err)
			httpError(w, http.StatusUnauthorized)
			return
		}
		if err := lobby.AddUser(username, w, r); err != nil {
			writeInternalError(fmt.Errorf("adding user to lobby: %v", err), log, w)
		}
	}
}

// userUpdatePasswordHandler updates the user's password, removing the user from the lobby.
func userUpdatePasswordHandler(userDao UserDao, lobby Lobby, log log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := user.User{
			Username: r.FormValue("username"),
			Password: r.FormValue("password"),
		}
		newPassword := r.FormValue("password_confirm")
		ctx := r.Context()
		err := userDao.UpdatePassword(ctx, u, newPassword)
		switch {
		case errors.Is(err, user.ErrIncorrectLogin):
			httpError(w, http.StatusUnauthorized)
			return
		case err != nil:
			writeInternalError(fmt.Errorf("updating user password: %v", err), log, w)
			return
		}
		lobby.RemoveUser(u.Username)
	}
}

// userDeleteHandler deletes the user from the database, removing the user from the lobby.
func userDeleteHandler(userDao UserDao, lobby Lobby, log log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u := user.User{
			Username: r.FormValue("username"),
			Password: r.FormValue("password"),
		}
		ctx := r.Context()
		err := userDao.Delete(ctx, u)
		switch {
		case errors.Is(err, user.ErrIncorrectLogin):
			httpError(w, http.StatusUnauthorized)
			return
		case err != nil:
			writeInternalError(fmt.Errorf("deleting user: %v", err), log, w)
			return
		}
		lobby.RemoveUser(u.Username)
	}
}
