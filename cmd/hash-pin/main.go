// Command hash-pin prints the bcrypt hash to put in ADMIN_DELETE_PIN_HASH.
//
//	go run ./cmd/hash-pin 1234
//	echo 1234 | go run ./cmd/hash-pin
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"fmcg-admin-api/pkg/pin"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	var plain string
	if len(os.Args) > 1 {
		plain = os.Args[1]
	} else {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			log.Fatal().Err(err).Msg("read PIN from stdin")
		}
		plain = line
	}
	plain = strings.TrimSpace(plain)
	if plain == "" {
		log.Fatal().Msg("PIN must not be empty")
	}

	hash, err := pin.Hash(plain)
	if err != nil {
		log.Fatal().Err(err).Msg("hash PIN")
	}
	fmt.Println(hash)
	log.Info().Msg("set ADMIN_DELETE_PIN_HASH to the value above and unset ADMIN_DELETE_PIN")
}
