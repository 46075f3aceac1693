package main

import (
	"context"
	"fmt"
	"time"

	"github.com/tsongo/darasa/core"
	"github.com/tsongo/darasa/core/account"
	"github.com/tsongo/darasa/core/assignment"
	"github.com/tsongo/darasa/core/catalog"
)

const seedPassword = "123456"

var seedTeachers = []struct {
	handle string
	name   string
	gender string
}{
	{"teacher1", "Grace Mwangi", account.GenderFemale},
	{"teacher2", "Daniel Otieno", account.GenderMale},
	{"teacher3", "Amina Hassan", account.GenderFemale},
}

var seedStudents = []struct {
	handle    string
	name      string
	className string
	gender    string
}{
	{"student1", "Brian Kiprotich", "CS-2301", account.GenderMale},
	{"student2", "Faith Njeri", "CS-2301", account.GenderFemale},
	{"student3", "Kevin Ochieng", "CS-2301", account.GenderMale},
	{"student4", "Mercy Wanjiru", "CS-2301", account.GenderFemale},
	{"student5", "Samuel Mutua", "CS-2302", account.GenderMale},
	{"student6", "Esther Achieng", "CS-2302", account.GenderFemale},
	{"student7", "John Kamau", "CS-2302", account.GenderMale},
	{"student8", "Lydia Chebet", "CS-2302", account.GenderFemale},
	{"student9", "Peter Omondi", "CS-2303", account.GenderMale},
	{"student10", "Naomi Wambui", "CS-2303", account.GenderFemale},
}

var seedCourses = []struct {
	teacherIdx  int
	name        string
	description string
	homeworks   []struct {
		title       string
		description string
		days        int
	}
}{
	{
		teacherIdx:  0,
		name:        "Introduction to Programming",
		description: "Core programming concepts: variables, control flow, functions, basic data structures and debugging, with weekly hands-on exercises.",
		homeworks: []struct {
			title       string
			description string
			days        int
		}{
			{"Basic syntax drills", "Write a program that reads an integer n and prints the sum 1..n, plus a primality checker and a bubble sort.", 7},
			{"Structured programming", "Split last week's exercises into functions with unit tests for each.", 14},
		},
	},
	{
		teacherIdx:  1,
		name:        "Data Structures and Algorithms",
		description: "Arrays, linked lists, stacks, queues, trees, hash tables and the classic algorithms over them, with complexity analysis.",
		homeworks: []struct {
			title       string
			description string
			days        int
		}{
			{"Linked list operations", "Implement a doubly linked list with append, prepend, delete, find and reverse.", 7},
			{"Binary tree traversals", "Implement pre-, in-, post- and level-order traversals and compare their costs.", 10},
		},
	},
	{
		teacherIdx:  2,
		name:        "Database Fundamentals",
		description: "The relational model, SQL, schema design up to third normal form, transactions and indexing, practiced on a worked case study.",
		homeworks: []struct {
			title       string
			description string
			days        int
		}{
			{"Library schema design", "Design a library system schema in 3NF: ER diagram, DDL and test rows.", 10},
		},
	},
}

// seed creates a demo data set: teacher and student accounts with profiles,
// courses with enrollments and homeworks. It is a no-op when accounts exist.
func (cli *commandLine) seed() error {
	ctx := context.Background()

	if _, err := cli.acctRepo.GetAccountByHandle(ctx, seedTeachers[0].handle); err == nil {
		fmt.Println("database already seeded; nothing to do")
		return nil
	} else if err != core.ErrNotFound {
		return err
	}

	teacherIDs := make([]string, 0, len(seedTeachers))
	for i, t := range seedTeachers {
		acct, err := cli.acctSvc.Register(ctx, account.NewAccount{
			Handle:   t.handle,
			Password: seedPassword,
			Role:     account.RoleTeacher,
		})
		if err != nil {
			return err
		}
		teacherIDs = append(teacherIDs, acct.ID)

		_, err = cli.acctSvc.CreateTeacherProfile(ctx, account.NewTeacherProfile{
			Handle:    t.handle,
			TeacherNo: fmt.Sprintf("T%04d", i+1),
			Name:      t.name,
			Gender:    t.gender,
			Email:     t.handle + "@edu.example.com",
		})
		if err != nil {
			return err
		}
	}

	studentIDs := make([]string, 0, len(seedStudents))
	for i, s := range seedStudents {
		acct, err := cli.acctSvc.Register(ctx, account.NewAccount{
			Handle:   s.handle,
			Password: seedPassword,
			Role:     account.RoleStudent,
		})
		if err != nil {
			return err
		}
		studentIDs = append(studentIDs, acct.ID)

		_, err = cli.acctSvc.CreateStudentProfile(ctx, account.NewStudentProfile{
			Handle:    s.handle,
			StudentNo: fmt.Sprintf("2023%04d", i+1),
			Name:      s.name,
			ClassName: s.className,
			Gender:    s.gender,
		})
		if err != nil {
			return err
		}
	}

	var homeworks int
	for i, c := range seedCourses {
		crs, err := cli.catSvc.Create(ctx, catalog.NewCourse{
			Name:        c.name,
			Description: c.description,
		}, teacherIDs[c.teacherIdx])
		if err != nil {
			return err
		}

		// stagger enrollments so courses end up with different sizes
		for j, studentID := range studentIDs {
			if (i+j)%3 == 0 {
				continue
			}
			if _, err = cli.catSvc.Enroll(ctx, crs.ID, studentID); err != nil {
				return err
			}
		}

		for _, hw := range c.homeworks {
			_, err = cli.asgSvc.Assign(ctx, crs.ID, assignment.NewHomework{
				Title:       hw.title,
				Description: hw.description,
				Deadline:    time.Now().UTC().AddDate(0, 0, hw.days),
				GradingCriteria: &assignment.GradingCriteria{
					Type:    assignment.CriteriaText,
					Content: "Correctness 40, style 20, documentation 20, extensions 20.",
				},
			})
			if err != nil {
				return err
			}
			homeworks++
		}
	}

	fmt.Println("seeded demo data")
	fmt.Printf("  teachers: %d (teacher1..teacher%d, password %q)\n", len(seedTeachers), len(seedTeachers), seedPassword)
	fmt.Printf("  students: %d (student1..student%d, password %q)\n", len(seedStudents), len(seedStudents), seedPassword)
	fmt.Printf("  courses: %d, homeworks: %d\n", len(seedCourses), homeworks)
	return nil
}
