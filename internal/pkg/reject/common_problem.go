package reject

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

const (
	genericUnexpectedError string = "error.generic.unexpected"
	cannotParseParams      string = "error.generic.cannot-parse-params"
	invalidRequest         string = "error.generic.invalid-request-payload"
	cannotParseBody        string = "error.generic.cannot-parse-payload"
	profileNotFound        string = "error.profile.not-found"
	usernameTaken          string = "error.profile.username-taken"
	walletRequired         string = "error.wallet.connection-required"
	tipInFlight            string = "error.tip.already-in-progress"
)

func RequestValidationProblem() Problem {
	return NewProblem().
		WithTitle("Invalid request payload").
		WithStatus(http.StatusBadRequest).
		WithCode(invalidRequest).
		Build()
}

func RequestParamsProblem() Problem {
	return NewProblem().
		WithTitle("Invalid request parameters").
		WithStatus(http.StatusBadRequest).
		WithCode(cannotParseParams).
		Build()
}

func BodyParseProblem() Problem {
	return NewProblem().
		WithTitle("Cannot read payload").
		WithStatus(http.StatusBadRequest).
		WithCode(cannotParseBody).
		Build()
}

// ProfileNotFoundProblem is the terminal dead-end render for a username
// that resolves to nothing.
func ProfileNotFoundProblem() Problem {
	return NewProblem().
		WithTitle("Profile not found").
		WithStatus(http.StatusNotFound).
		WithCode(profileNotFound).
		Build()
}

func UsernameTakenProblem() Problem {
	return NewProblem().
		WithTitle("Username already taken").
		WithStatus(http.StatusConflict).
		WithCode(usernameTaken).
		Build()
}

// WalletRequiredProblem renders the connect prompt: the caller reached a
// page that needs an active wallet connection.
func WalletRequiredProblem() Problem {
	return NewProblem().
		WithTitle("Connect your wallet first").
		WithStatus(http.StatusUnauthorized).
		WithCode(walletRequired).
		Build()
}

func TipInFlightProblem() Problem {
	return NewProblem().
		WithTitle("A tip is already being sent").
		WithStatus(http.StatusConflict).
		WithCode(tipInFlight).
		Build()
}

func UnexpectedProblem(err error) Problem {
	log.Warn().Err(err).Msg("Unexpected error while handling request: " + err.Error())
	return NewProblem().
		WithTitle("Unexpected error").
		WithStatus(http.StatusInternalServerError).
		WithCode(genericUnexpectedError).
		Build()
}
