package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yanqian/diabetes-risk/internal/infra/recordrepo"
)

func newMigrateCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the record store schema.",
		Long: `Apply the embedded record store migrations.

--version -1 migrates to the latest schema, 0 rolls every migration back
and any positive number migrates to exactly that version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			backend := recordrepo.Backend(v.GetString("backend"))
			dsn := v.GetString("dsn")
			if dsn == "" {
				return fmt.Errorf("--dsn is required")
			}
			version, err := recordrepo.Migrate(backend, dsn, v.GetInt("version"), newLogger(v, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}
			cmd.Printf("%s record schema at version %d\n", backend, version)
			return nil
		},
	}
	cmd.Flags().String("backend", string(recordrepo.BackendSQLite), "record store: postgres or sqlite")
	cmd.Flags().String("dsn", "", "postgres DSN or sqlite file path")
	cmd.Flags().Int("version", -1, "target schema version")
	return cmd
}
