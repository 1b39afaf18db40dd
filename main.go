package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rettel/hotel-admin/api"
	"github.com/rettel/hotel-admin/rest"
)

const usage = `usage: hotel-admin <command> [args]

commands:
  dashboard                         show admin dashboard statistics
  rooms list                        list rooms
  rooms get <id>                    show one room
  rooms delete <id>                 delete a room
  meals list [page]                 list meals
  meals get <id>                    show one meal
  meals delete <id>                 delete a meal
  services list                     list services
  services get <id>                 show one service
  services book <id> <date> <time>  book a service
  services delete <id>              delete a service
  bookings list                     list bookings
  bookings status <id> <status>     update a booking status
  users list                        list users
  users get <id>                    show one user

configure HOTEL_APIBASEURL, HOTEL_EMAIL and HOTEL_PASSWORD in the
environment or a .env file. the chat widget ships separately as chatclient.`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	ctx := context.Background()
	client := rest.New(config.APIBaseURL)

	if config.Email != "" {
		if _, err := client.Login(ctx, config.Email, config.Password); err != nil {
			log.Fatalln("Could not authenticate:", err)
		}
	}

	if err := run(ctx, client, os.Args[1:]); err != nil {
		log.Fatalln(err)
	}
}

func run(ctx context.Context, client *rest.Client, args []string) error {
	switch args[0] {
	case "dashboard":
		return showDashboard(ctx, client)
	case "rooms":
		return runRooms(ctx, client, args[1:])
	case "meals":
		return runMeals(ctx, client, args[1:])
	case "services":
		return runServices(ctx, client, args[1:])
	case "bookings":
		return runBookings(ctx, client, args[1:])
	case "users":
		return runUsers(ctx, client, args[1:])
	}
	fmt.Println(usage)
	return fmt.Errorf("unknown command: %s", args[0])
}

func showDashboard(ctx context.Context, client *rest.Client) error {
	data, err := client.Dashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Total users: %d\n", data.TotalUsers)
	fmt.Printf("  management:  %d\n", data.RoleCounts.Management)
	fmt.Printf("  hotel staff: %d\n", data.RoleCounts.HotelStaff)
	fmt.Printf("  guests:      %d\n", data.RoleCounts.Guest)
	return nil
}

func runRooms(ctx context.Context, client *rest.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("rooms: missing subcommand")
	}
	switch args[0] {
	case "list":
		rooms, err := client.ListRooms(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNUMBER\tTYPE\tSTATUS\tPRICE")
		for _, r := range rooms {
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%.2f\n", r.ID, r.Number, r.Type, r.Status, r.Price)
		}
		return w.Flush()
	case "get":
		if len(args) < 2 {
			return fmt.Errorf("rooms get: missing id")
		}
		room, err := client.GetRoom(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Room %d (%s): %s, %.2f\n", room.Number, room.Type, room.Status, room.Price)
		return nil
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("rooms delete: missing id")
		}
		return client.DeleteRoom(ctx, args[1])
	}
	return fmt.Errorf("rooms: unknown subcommand: %s", args[0])
}

func runMeals(ctx context.Context, client *rest.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("meals: missing subcommand")
	}
	switch args[0] {
	case "list":
		page := 1
		if len(args) > 1 {
			p, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("meals list: bad page: %v", err)
			}
			page = p
		}
		meals, err := client.ListMeals(ctx, page)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSPECIAL")
		for _, m := range meals.Results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s %.2f\t%t\n", m.ID, m.Name, m.Category, m.Currency, m.Price, m.IsSpecial)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if meals.Count > 0 {
			fmt.Printf("(%d meals, page %d)\n", meals.Count, page)
		}
		return nil
	case "get":
		if len(args) < 2 {
			return fmt.Errorf("meals get: missing id")
		}
		meal, err := client.GetMeal(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s): %s %.2f, %s/%s/%s\n", meal.Name, meal.Category, meal.Currency, meal.Price, meal.MealType, meal.DietType, meal.CuisineType)
		return nil
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("meals delete: missing id")
		}
		return client.DeleteMeal(ctx, args[1])
	}
	return fmt.Errorf("meals: unknown subcommand: %s", args[0])
}

func runServices(ctx context.Context, client *rest.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("services: missing subcommand")
	}
	switch args[0] {
	case "list":
		services, err := client.ListServices(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE")
		for _, s := range services {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", s.ID, s.Name, s.Category, s.Price)
		}
		return w.Flush()
	case "get":
		if len(args) < 2 {
			return fmt.Errorf("services get: missing id")
		}
		service, err := client.GetService(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s): %.2f\n%s\n", service.Name, service.Category, service.Price, service.Description)
		return nil
	case "book":
		if len(args) < 4 {
			return fmt.Errorf("services book: need <id> <date> <time>")
		}
		booking, err := client.BookService(ctx, args[1], &api.BookingRequest{Date: args[2], Time: args[3]})
		if err != nil {
			return err
		}
		fmt.Printf("Booked: %s (%s)\n", booking.ID, booking.Status)
		return nil
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("services delete: missing id")
		}
		return client.DeleteService(ctx, args[1])
	}
	return fmt.Errorf("services: unknown subcommand: %s", args[0])
}

func runBookings(ctx context.Context, client *rest.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("bookings: missing subcommand")
	}
	switch args[0] {
	case "list":
		bookings, err := client.ListBookings(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSERVICE\tUSER\tDATE\tTIME\tSTATUS")
		for _, b := range bookings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", b.ID, b.Service, b.User, b.Date, b.Time, b.Status)
		}
		return w.Flush()
	case "status":
		if len(args) < 3 {
			return fmt.Errorf("bookings status: need <id> <status>")
		}
		booking, err := client.UpdateBookingStatus(ctx, args[1], args[2])
		if err != nil {
			return err
		}
		fmt.Printf("Booking %s: %s\n", booking.ID, booking.Status)
		return nil
	}
	return fmt.Errorf("bookings: unknown subcommand: %s", args[0])
}

func runUsers(ctx context.Context, client *rest.Client, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("users: missing subcommand")
	}
	switch args[0] {
	case "list":
		users, err := client.ListUsers(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tACTIVE")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Username, u.Email, u.Role, u.IsActive)
		}
		return w.Flush()
	case "get":
		if len(args) < 2 {
			return fmt.Errorf("users get: missing id")
		}
		user, err := client.GetUser(ctx, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> role=%s city=%s active=%t\n", user.Username, user.Email, user.Role, user.City, user.IsActive)
		return nil
	}
	return fmt.Errorf("users: unknown subcommand: %s", args[0])
}
