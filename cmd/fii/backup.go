package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errBackupsDisabled = errors.New("backups are not configured (set BACKUP_S3_BUCKET)")

func newBackupCmd(a *app) *cobra.Command {
	var (
		list   bool
		rotate int
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Envia uma cópia da carteira para o bucket S3 configurado",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := a.container.Backup
			if svc == nil {
				return errBackupsDisabled
			}
			out := cmd.OutOrStdout()

			if list {
				backups, err := svc.ListBackups(cmd.Context())
				if err != nil {
					return err
				}
				a.jsonOut = true
				return a.output(out, backups, nil)
			}

			key, err := svc.Backup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s\n", key)

			if rotate > 0 {
				deleted, err := svc.RotateOldBackups(cmd.Context(), rotate)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%d old backups deleted\n", deleted)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list stored backups instead of creating one")
	cmd.Flags().IntVar(&rotate, "rotate", 0, "after uploading, delete backups older than this many days (keeps the newest 3)")
	return cmd
}
