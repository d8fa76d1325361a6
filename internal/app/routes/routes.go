package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/campusrecords/internal/app/controllers"
	"github.com/yigit/campusrecords/internal/app/models"
	"github.com/yigit/campusrecords/internal/middleware"
)

// Controllers groups every handler the router mounts.
type Controllers struct {
	Auth       *controllers.AuthController
	Profile    *controllers.ProfileController
	Student    *controllers.StudentController
	Faculty    *controllers.FacultyController
	Subject    *controllers.SubjectController
	Department *controllers.DepartmentController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/health", c.Department.Health)
	v1.GET("/departments", c.Department.ListDepartments)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
	}

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	facultyOnly := authMiddleware.RoleRequired(models.RoleFaculty)

	me := authenticated.Group("/me")
	{
		me.GET("", c.Auth.Me)
		me.GET("/profile", c.Profile.GetProfile)
		me.PUT("/profile", c.Profile.UpdateProfile)

		// the role record is resolved per request, so no role middleware here
		me.GET("/student", c.Student.GetMyStudent)
		me.PATCH("/student", c.Student.UpdateMyStudent)
		me.GET("/student/subjects", c.Student.MySubjects)
		me.PUT("/student/picture", c.Student.UpdateMyPicture)

		me.GET("/faculty", c.Faculty.GetMyFaculty)
		me.PATCH("/faculty", c.Faculty.UpdateMyFaculty)
		me.PUT("/faculty/subject", c.Faculty.AssignMySubject)
	}

	students := authenticated.Group("/students")
	students.Use(facultyOnly)
	{
		students.GET("", c.Student.ListStudents)
		students.POST("", c.Student.CreateStudent)
		students.GET("/:id", c.Student.GetStudent)
		students.PATCH("/:id", c.Student.UpdateStudent)
		students.DELETE("/:id", c.Student.DeleteStudent)
		students.POST("/:id/department-subjects", c.Student.AssignDepartmentSubjects)
		students.POST("/:id/promote", c.Student.PromoteStudent)
		students.POST("/:id/assign", c.Student.AssignToFaculty)
	}

	faculties := authenticated.Group("/faculties")
	{
		faculties.GET("", c.Faculty.ListFaculties)
		faculties.GET("/:id", c.Faculty.GetFaculty)
		faculties.DELETE("/:id", authMiddleware.SuperuserRequired(), c.Faculty.DeleteFaculty)
	}

	subjects := authenticated.Group("/subjects")
	{
		subjects.GET("", c.Subject.ListSubjects)
		subjects.GET("/:code", c.Subject.GetSubject)
		subjects.POST("", facultyOnly, c.Subject.CreateSubject)
		subjects.PATCH("/:code", facultyOnly, c.Subject.UpdateSubject)
		subjects.DELETE("/:code", facultyOnly, c.Subject.DeleteSubject)
	}
}
