package main

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/handiism/novel-downloader/internal/download"
)

// chooseWorks asks which works to download. Every work starts selected.
func chooseWorks(names []string) ([]int, error) {
	options := make([]huh.Option[int], len(names))
	selection := make([]int, len(names))
	for i, name := range names {
		options[i] = huh.NewOption(fmt.Sprintf("%d. %s", i, name), i).Selected(true)
		selection[i] = i
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().
				Title("Volumes").
				Description("Select the volumes to download.").
				Options(options...).
				Value(&selection).
				Validate(func(s []int) error {
					if len(s) == 0 {
						return download.ErrEmptyList
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())

	err := form.Run()
	if err != nil {
		return nil, err
	}
	return selection, nil
}
