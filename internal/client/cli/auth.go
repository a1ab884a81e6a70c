package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/dmitrijs2005/userkeeper/internal/common"
)

func (a *App) Register(ctx context.Context) error {

	name, err := GetSimpleText(a.reader, "Enter name", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Register(ctx, name, email, string(password))
	if err != nil {
		if errors.Is(err, common.ErrEmailAlreadyExists) {
			log.Printf("Registration unsuccessfull: email already taken")
		} else {
			log.Printf("Registration unsuccessfull: %s", err.Error())
		}
		return err
	}

	log.Printf("Registered %s, please login", user.Email)
	return nil
}

func (a *App) Login(ctx context.Context) error {

	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}
	defer common.WipeByteArray(password)

	user, err := a.api.Login(ctx, email, string(password))
	if err != nil {
		log.Printf("Login unsuccessfull: %s", err.Error())
		return err
	}

	a.userName = user.Name
	log.Printf("Login successfull")
	return nil
}

func (a *App) Me(ctx context.Context) error {

	user, err := a.api.Me(ctx)
	if err != nil {
		log.Printf("error: %v", err)
		return err
	}

	printlnFn("ID:      " + user.ID)
	printlnFn("Name:    " + user.Name)
	printlnFn("Email:   " + user.Email)
	printlnFn("Created: " + user.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func (a *App) Logout(ctx context.Context) error {

	if err := a.api.Logout(ctx); err != nil {
		log.Printf("error: %v", err)
		return err
	}

	a.userName = ""
	log.Printf("Logged out")
	return nil
}
