package system

import (
	"fmt"

	"github.com/spf13/cobra"

	pasetotoken "github.com/mediqhq/mediq_backend/pkg/paseto"
)

func NewGenKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "genkey",
		Short: "Generate a PASETO local key for the authentication config",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(pasetotoken.NewKeyHex())
			return nil
		},
	}
}
